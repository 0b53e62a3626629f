/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"github.com/spf13/cobra"
)

const (
	releaseVersion = "0.1.0"
)

func main() {
	cobra.CheckErr(loadDotEnv(".env"))

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
