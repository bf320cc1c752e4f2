package main

import "github.com/vibast-solutions/ms-go-iranpay/cmd"

func main() {
	cmd.Execute()
}
