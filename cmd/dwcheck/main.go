// Command dwcheck checks files out and in against an FTP or SFTP server.
package main

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/dwcheck/internal/cmd"
	"github.com/Iron-Ham/dwcheck/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !errors.IsReported(err) {
			fmt.Fprintln(os.Stderr, "error:", errors.UserMessage(err))
		}
		os.Exit(1)
	}
}
