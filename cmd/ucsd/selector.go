package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ucskit/v1/internal/core/ucs/dispatch"
)

// selectorCmd 由函数签名推导选择器
var selectorCmd = &cobra.Command{
	Use:   "selector <signature>",
	Short: "由函数签名推导4字节选择器",
	Long: `由函数签名推导4字节选择器

签名使用规范形式 name(type1,type2,...)，选择器取其Keccak-256
哈希的前4字节。

示例:
  ucsd selector "transfer(address,uint256)"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sig, err := parseSig(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", sig.Canonical(), dispatch.DeriveSelector(sig).Hex())
		return nil
	},
}

// parseSig 解析 name(type1,type2,...) 形式的签名
func parseSig(s string) (dispatch.Sig, error) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return dispatch.Sig{}, fmt.Errorf("签名格式非法: %q (期望 name(type1,type2,...))", s)
	}
	name := s[:open]
	inner := s[open+1 : len(s)-1]
	if inner == "" {
		return dispatch.NewSig(name), nil
	}
	args := strings.Split(inner, ",")
	for i, a := range args {
		args[i] = strings.TrimSpace(a)
		if args[i] == "" {
			return dispatch.Sig{}, fmt.Errorf("签名含空参数类型: %q", s)
		}
	}
	return dispatch.NewSig(name, args...), nil
}

func init() {
	rootCmd.AddCommand(selectorCmd)
}
