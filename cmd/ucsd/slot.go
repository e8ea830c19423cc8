package main

import (
	"fmt"

	"github.com/spf13/cobra"

	hashimpl "github.com/ucskit/v1/internal/core/infrastructure/crypto/hash"
	slotpkg "github.com/ucskit/v1/internal/core/ucs/slot"
)

// slotCmd 由命名空间标识推导根槽
var slotCmd = &cobra.Command{
	Use:   "slot <namespace-id>",
	Short: "由命名空间标识推导根槽",
	Long: `由命名空间标识推导根槽

根槽按 keccak(keccak(id) - 1) 计算并将最低字节清零，保证256槽
粒度的对齐。不同命名空间的根槽区域互不重叠。

示例:
  ucsd slot "erc7201:example.main"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deriver := slotpkg.NewDeriver(hashimpl.NewHashService())
		fmt.Printf("%s\t%s\n", args[0], deriver.NamespaceRoot(args[0]).Hex())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(slotCmd)
}
