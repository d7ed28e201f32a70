package main

import (
	"os"

	"github.com/BUTSpeechFIT/mt-asr-data-prep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
