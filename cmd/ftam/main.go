// Command ftam is the interactive FTAM client: a prompt with completion for
// the protocol verbs, resumable uploads and downloads, and a CSV log of
// transfer performance.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/c-bata/go-prompt"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/DuarteR-dev/Projet-FTAM/client"
	"github.com/DuarteR-dev/Projet-FTAM/perfmetrics"
	"github.com/DuarteR-dev/Projet-FTAM/protocol"
	"github.com/DuarteR-dev/Projet-FTAM/terminal"
	"github.com/DuarteR-dev/Projet-FTAM/wire"
)

var (
	config           Config
	ftamClient       *client.Client
	themeManager     *terminal.ThemeManager
	commandCompleter *terminal.CommandCompleter
	tableFormatter   *terminal.TableFormatter
)

func main() {
	_ = godotenv.Load()

	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := validator.New().Struct(config); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	var err error
	themeManager, err = terminal.NewThemeManager()
	if err != nil {
		fmt.Printf("Warning: failed to initialize theme manager: %v\n", err)
		themeManager = terminal.DefaultThemeManager()
	}
	commandCompleter = terminal.NewCommandCompleter(config.LocalDir)
	tableFormatter = terminal.NewTableFormatter()

	if err := os.MkdirAll(config.LocalDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "local directory: %v\n", err)
		os.Exit(1)
	}

	addr := net.JoinHostPort(config.ServerHost, strconv.Itoa(config.ServerPort))
	ftamClient, err = client.Dial(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connection failed: %v\n", err)
		os.Exit(1)
	}
	themeManager.GetInfoColor().Println(ftamClient.Banner())
	themeManager.GetTextColor().Println("Type LEAVE to quit; Tab completes commands")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nClosing association...")
		_ = ftamClient.Leave()
		os.Exit(0)
	}()

	p := prompt.New(
		executor,
		commandCompleter.Completer,
		prompt.OptionTitle("FTAM Client"),
		prompt.OptionLivePrefix(func() (string, bool) {
			return "ftam> ", true
		}),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionCompletionWordSeparator(" "),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(buf *prompt.Buffer) {
				fmt.Println("\nClosing association...")
				_ = ftamClient.Leave()
				os.Exit(0)
			},
		}),
	)
	p.Run()
}

// executor handles one line of user input.
func executor(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}
	fields := strings.Fields(input)

	switch strings.ToUpper(fields[0]) {
	case "LEAVE", "QUIT", "EXIT":
		_ = ftamClient.Leave()
		themeManager.GetTextColor().Println("Association closed.")
		os.Exit(0)

	case "LIST":
		doList()

	case "READ":
		doRead()

	case "UPLOAD":
		if len(fields) < 2 {
			themeManager.GetErrorColor().Println("usage: UPLOAD <file> [remote-name]")
			return
		}
		remote := fields[1]
		if len(fields) > 2 {
			remote = fields[2]
		}
		doUpload(fields[1], remote)

	case "DOWNLOAD":
		if len(fields) < 2 {
			themeManager.GetErrorColor().Println("usage: DOWNLOAD <remote-name>")
			return
		}
		doDownload(fields[1])

	case "LLS":
		if err := tableFormatter.FormatLocalDirectory(config.LocalDir); err != nil {
			themeManager.GetErrorColor().Printf("lls: %v\n", err)
		}

	case "THEME":
		if len(fields) < 2 {
			themeManager.GetTextColor().Printf("current theme: %s\n", themeManager.GetThemeName())
			return
		}
		if err := themeManager.SetTheme(fields[1]); err != nil {
			themeManager.GetErrorColor().Println(err)
		}

	case "CLEAR":
		fmt.Print("\033[H\033[2J")

	default:
		// Everything else is a protocol command; the server decides.
		doCommand(fields)
	}
}

func doCommand(fields []string) {
	reply, err := ftamClient.Do(fields...)
	if err != nil {
		themeManager.GetErrorColor().Printf("connection error: %v\n", err)
		return
	}
	printReply(reply)
}

func printReply(reply string) {
	if strings.Contains(strings.SplitN(reply, " ", 2)[0], "ERROR") {
		themeManager.GetErrorColor().Println(reply)
		return
	}
	themeManager.GetSuccessColor().Println(reply)
}

func doList() {
	reply, err := ftamClient.Do("LIST")
	if err != nil {
		themeManager.GetErrorColor().Printf("connection error: %v\n", err)
		return
	}
	fields := wire.DecodeLine(reply)
	if len(fields) == 0 || fields[0] != protocol.ReplyListOK {
		printReply(reply)
		return
	}
	if err := tableFormatter.FormatRemoteListing(fields[1:]); err != nil {
		themeManager.GetErrorColor().Printf("render listing: %v\n", err)
	}
}

func doRead() {
	reply, err := ftamClient.Do("READ")
	if err != nil {
		themeManager.GetErrorColor().Printf("connection error: %v\n", err)
		return
	}
	fields := wire.DecodeLine(reply)
	if len(fields) == 0 || fields[0] != protocol.ReplyReadOK {
		printReply(reply)
		return
	}
	content := []byte{}
	if len(fields) > 1 {
		decoded, err := wire.DecodeBinary(fields[1])
		if err != nil {
			themeManager.GetErrorColor().Printf("decode content: %v\n", err)
			return
		}
		content = decoded
	}
	themeManager.GetTextColor().Println(string(content))
}

func doUpload(localName, remoteName string) {
	localPath := filepath.Join(config.LocalDir, filepath.Base(localName))
	stats, err := ftamClient.Upload(localPath, remoteName)
	if err != nil {
		themeManager.GetErrorColor().Printf("upload failed: %v\n", err)
		return
	}
	reportTransfer("upload", stats)
}

func doDownload(remoteName string) {
	localPath := filepath.Join(config.LocalDir, filepath.Base(remoteName))
	stats, err := ftamClient.Download(remoteName, localPath)
	if err != nil {
		themeManager.GetErrorColor().Printf("download failed: %v\n", err)
		return
	}
	reportTransfer("download", stats)
}

func reportTransfer(direction string, stats *client.TransferStats) {
	themeManager.GetSuccessColor().Printf("%s complete: %s, %d bytes in %s (resumed at %d, %d attempt(s))\n",
		direction, stats.File, stats.Bytes, stats.Duration.Round(time.Millisecond), stats.ResumedAt, stats.Attempts)
	if err := perfmetrics.LogTransferToCSV(config.MetricsFile, perfmetrics.Record{
		Direction: direction,
		FileName:  stats.File,
		Bytes:     stats.Bytes,
		ResumedAt: stats.ResumedAt,
		Attempts:  stats.Attempts,
		Duration:  stats.Duration,
	}); err != nil {
		themeManager.GetErrorColor().Printf("metrics log: %v\n", err)
	}
}
