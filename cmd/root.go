package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "iranpay",
	Short: "Iranian payment gateway microservice",
	Long:  "A microservice for creating, verifying, settling and reversing payments through Iranian internet payment gateways.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
