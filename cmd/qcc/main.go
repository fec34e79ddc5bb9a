// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qcc/internal/compiler"
)

var command = &cobra.Command{
	Use:           "qcc source [-o output.asm]",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		asm, err := compiler.CompileText(string(src))
		if err != nil {
			return err
		}

		return os.WriteFile(output, []byte(asm), 0o644)
	},
}

func init() {
	command.Flags().StringP("output", "o", "test.asm", "output path for the generated NASM assembly")
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "qcc: %s\n", err)
		os.Exit(1)
	}
}
