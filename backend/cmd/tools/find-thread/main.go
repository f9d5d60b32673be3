// find-thread looks up the earliest thread on a board with exactly the given
// text and prints it without its delete password.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/itchan-dev/anonboard/backend/internal/setup"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/domain"
	"github.com/itchan-dev/anonboard/shared/logger"
	sharedpg "github.com/itchan-dev/anonboard/shared/storage/pg"
)

func main() {
	var configFolder, board, text string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.StringVar(&board, "board", "", "board name")
	flag.StringVar(&text, "text", "", "exact thread text")
	flag.Parse()

	if board == "" || text == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustLoad(configFolder)
	// keep stdout clean for the JSON output
	logger.InitializeTo(os.Stderr, cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	storage, err := setup.OpenStorage(ctx, cfg, sharedpg.LightweightConnectionConfig())
	if err != nil {
		logger.Log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}

	err = run(ctx, storage, board, text, os.Stdout)
	storage.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var errNotFound = errors.New("thread not found")

type finder interface {
	FindThreadByBoardAndText(ctx context.Context, board domain.BoardName, text domain.PostText) (*domain.Thread, error)
}

func run(ctx context.Context, storage finder, board, text string, out io.Writer) error {
	thread, err := storage.FindThreadByBoardAndText(ctx, board, text)
	if err != nil {
		return err
	}
	if thread == nil {
		return errNotFound
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(thread.View(domain.AllReplies))
}
