package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	Backend   string // 存储后端: memory|badger
	BadgerDir string // badger数据目录
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "ucsd",
	Short: "UCS 可升级合约运行时工具",
	Long: `UCS 可升级合约运行时命令行工具

提供选择器推导、命名空间槽推导与本地演示运行等能力:
- selector  由函数签名推导4字节选择器
- slot      由命名空间标识推导根槽
- demo      在本地引擎上部署字典与代理并执行示例调用`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.Backend, "backend", "memory", "存储后端: memory|badger")
	rootCmd.PersistentFlags().StringVar(&globalFlags.BadgerDir, "badger-dir", "data/ucs", "badger数据目录")
}
