// Interactive terminal simulator for the bookkeeper chat surface.
// Messages are typed as if sent over WhatsApp; "foto <caminho>" simulates
// sending a receipt image, with an optional caption after "|".
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"livrocaixa/internal/ai"
	"livrocaixa/internal/config"
	"livrocaixa/internal/ledger"
	applog "livrocaixa/internal/log"
	"livrocaixa/internal/ocr"
	"livrocaixa/internal/services"
	"livrocaixa/internal/storage"
)

func main() {
	_ = godotenv.Load()

	// Keep the terminal clean for the conversation; only warnings and
	// errors reach stderr.
	logger := applog.New(applog.Config{
		Level:     slog.LevelWarn,
		Component: applog.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
	})
	applog.SetDefault(logger)

	cfg := config.Load()

	var store ledger.Store
	switch cfg.DataBackend {
	case "file":
		s, err := storage.NewJSONFile(cfg.LedgerPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "erro ao abrir o livro-caixa: %v\n", err)
			os.Exit(1)
		}
		store = s
	default:
		store = storage.NewMemory()
	}
	defer store.Close()

	bookkeeper := services.NewBookkeeper(ledger.New(store), ocr.NewSimulated(), ai.NewDisabled())

	banner := strings.Repeat("=", 60)
	fmt.Println(banner)
	fmt.Println("  📱 WhatsApp Bookkeeper — Simulador")
	fmt.Println("  Envie mensagens como se fosse WhatsApp.")
	fmt.Println("  Use 'foto <caminho>' para simular envio de imagem.")
	fmt.Println("  Digite 'sair' para encerrar.")
	fmt.Println(banner)
	fmt.Println()

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("👤 Você: ")
		if !scanner.Scan() {
			fmt.Println("\n👋 Até logo!")
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		lower := strings.ToLower(input)
		if lower == "sair" || lower == "exit" || lower == "quit" {
			fmt.Println("👋 Até logo!")
			return
		}

		var reply string
		if strings.HasPrefix(lower, "foto ") {
			imagePath, caption := splitImageInput(input[5:])
			fmt.Printf("📷 [Processando imagem: %s...]\n", filepath.Base(imagePath))

			var err error
			reply, err = bookkeeper.RecordReceipt(ctx, imagePath, caption)
			if err != nil {
				reply = services.ErrorReply(err)
			}
		} else {
			var err error
			reply, err = bookkeeper.ProcessMessage(ctx, input)
			if err != nil {
				reply = services.ErrorReply(err)
			}
		}

		fmt.Printf("\n🤖 Bookkeeper:\n%s\n\n", reply)
	}
}

// splitImageInput separates the image path from an optional caption
// after "|", e.g. "foto recibo.jpg | almoço com cliente".
func splitImageInput(raw string) (path, caption string) {
	parts := strings.SplitN(raw, "|", 2)
	path = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		caption = strings.TrimSpace(parts[1])
	}
	return path, caption
}
