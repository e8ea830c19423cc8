// ucsd UCS可升级合约运行时的命令行入口
package main

func main() {
	Execute()
}
