package main

import (
	"embed"
	"io/fs"
	"log"
	"os"

	"SIMAPRO-backend/internal/cli"
)

// フロントのビルド出力を埋め込む

//go:embed public
var embedded embed.FS

func main() {
	sub, err := fs.Sub(embedded, "public")
	if err != nil {
		log.Fatal(err)
	}
	if err := cli.NewRootCommand(sub).Execute(); err != nil {
		os.Exit(1)
	}
}
