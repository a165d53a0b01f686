// Package services wires the receipt pipeline together: OCR, field
// extraction, categorization, the ledger and the summary renderer, exposed
// as the two operations a chat transport needs.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"livrocaixa/internal/ai"
	"livrocaixa/internal/amqp"
	"livrocaixa/internal/categorize"
	"livrocaixa/internal/core"
	"livrocaixa/internal/extract"
	"livrocaixa/internal/ledger"
	"livrocaixa/internal/log"
	"livrocaixa/internal/ocr"
	"livrocaixa/internal/quick"
	"livrocaixa/internal/report"
)

// EventPublisher publishes ledger events after mutations. Satisfied by
// *amqp.Client; nil disables publishing.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// Bookkeeper orchestrates receipt and text message processing end to end.
type Bookkeeper struct {
	ledger      *ledger.Ledger
	reader      ocr.TextReader
	assistant   ai.Assistant
	extractor   *extract.Extractor
	categorizer *categorize.Categorizer
	quick       *quick.Parser
	renderer    *report.Renderer
	publisher   EventPublisher
	onMutation  func()
	structured  *log.StructuredLogger
}

// Option customizes a Bookkeeper.
type Option func(*Bookkeeper)

// WithPublisher enables ledger event publishing after mutations.
func WithPublisher(p EventPublisher) Option {
	return func(b *Bookkeeper) { b.publisher = p }
}

// WithMutationHook registers a callback invoked after every successful
// ledger mutation. The HTTP layer uses it to purge the summary cache.
func WithMutationHook(fn func()) Option {
	return func(b *Bookkeeper) { b.onMutation = fn }
}

// WithExtractor overrides the default field extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(b *Bookkeeper) { b.extractor = e }
}

// WithCategorizer overrides the default categorizer.
func WithCategorizer(c *categorize.Categorizer) Option {
	return func(b *Bookkeeper) { b.categorizer = c }
}

// WithQuickParser overrides the default quick entry parser.
func WithQuickParser(p *quick.Parser) Option {
	return func(b *Bookkeeper) { b.quick = p }
}

func NewBookkeeper(l *ledger.Ledger, reader ocr.TextReader, assistant ai.Assistant, opts ...Option) *Bookkeeper {
	b := &Bookkeeper{
		ledger:     l,
		reader:     reader,
		assistant:  assistant,
		extractor:  extract.New(),
		quick:      quick.New(),
		renderer:   report.NewRenderer(report.NewAdvisor(categorize.RevenueCategories())),
		structured: log.NewStructuredLogger(log.New(log.Config{
			Component: log.ComponentBookkeeper,
			Handler:   slog.Default().Handler(),
		})),
	}

	catOpts := []categorize.Option{}
	if assistant != nil && assistant.Enabled() {
		catOpts = append(catOpts, categorize.WithClassifier(assistantClassifier{assistant}))
	}
	b.categorizer = categorize.New(catOpts...)

	for _, opt := range opts {
		opt(b)
	}
	return b
}

// assistantClassifier adapts ai.Assistant to the categorizer's port.
type assistantClassifier struct {
	assistant ai.Assistant
}

func (a assistantClassifier) Classify(ctx context.Context, text string) (string, error) {
	return a.assistant.Classify(ctx, text)
}

// RecordReceipt runs the full pipeline for a receipt image: OCR, field
// extraction, categorization, persistence, confirmation reply.
func (b *Bookkeeper) RecordReceipt(ctx context.Context, imagePath, caption string) (string, error) {
	rawText, err := b.reader.ExtractText(ctx, imagePath)
	if err != nil {
		return "", fmt.Errorf("read receipt image: %w", err)
	}

	tx := b.extractor.Extract(rawText, caption)
	return b.record(ctx, tx)
}

// ProcessMessage handles a text-only message: summary and admin commands,
// quick entries, and a clarification reply for everything else.
func (b *Bookkeeper) ProcessMessage(ctx context.Context, text string) (string, error) {
	msg := strings.ToLower(strings.TrimSpace(text))

	switch msg {
	case "resumo", "resumo semanal", "summary", "weekly":
		return b.WeeklySummary(ctx, "")
	case "limpar", "reset", "clear":
		return b.clear(ctx)
	case "ajuda", "help", "?":
		return helpMessage, nil
	}

	if tx, ok := b.quick.Parse(text); ok {
		return b.record(ctx, tx)
	}

	return clarificationMessage, nil
}

// WeeklySummary renders the Monday-to-Sunday summary for the week holding
// refDate (today when empty). When the AI assistant is available its
// rephrasing is preferred, falling back to the template on any error.
func (b *Bookkeeper) WeeklySummary(ctx context.Context, refDate string) (string, error) {
	entries, err := b.ledger.GetWeek(ctx, refDate)
	if err != nil {
		return "", err
	}

	summary := b.renderer.Summary(entries, "Semanal")
	if len(entries) == 0 || b.assistant == nil || !b.assistant.Enabled() {
		return summary, nil
	}

	rephrased, err := b.assistant.Summarize(ctx, summary)
	if err != nil || strings.TrimSpace(rephrased) == "" {
		slog.WarnContext(ctx, "AI summary failed, using template", "error", err)
		return summary, nil
	}
	return rephrased, nil
}

// Summary renders a summary over an inclusive date range. Empty bounds
// leave that side open; the label adjusts to what was asked.
func (b *Bookkeeper) Summary(ctx context.Context, start, end string) (string, error) {
	entries, err := b.ledger.Get(ctx, start, end)
	if err != nil {
		return "", err
	}

	label := "Geral"
	if start != "" || end != "" {
		label = "do Período"
	}
	return b.renderer.Summary(entries, label), nil
}

func (b *Bookkeeper) record(ctx context.Context, tx core.Transaction) (string, error) {
	category := b.categorizer.Categorize(ctx, tx)

	entry, err := b.ledger.Add(ctx, tx, category)
	if err != nil {
		return "", err
	}

	b.structured.LogEntryRecorded(ctx, entry.ID, string(entry.Type), entry.Category, entry.Total.String(), entry.Date)

	b.publish(ctx, amqp.NewEntryRecordedEvent(entry))
	b.mutated()

	return confirmationReply(entry), nil
}

func (b *Bookkeeper) clear(ctx context.Context) (string, error) {
	if err := b.ledger.Clear(ctx); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Ledger cleared")
	b.publish(ctx, amqp.NewLedgerClearedEvent())
	b.mutated()

	return "🗑️ Livro-caixa limpo. Todas as transações foram removidas.", nil
}

// publish is best effort: a broker failure never fails the user request.
func (b *Bookkeeper) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if b.publisher == nil {
		return
	}
	if err := b.publisher.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", event.Kind, "error", err)
	}
}

func (b *Bookkeeper) mutated() {
	if b.onMutation != nil {
		b.onMutation()
	}
}

// ErrorReply maps a pipeline error to the user-facing chat reply.
func ErrorReply(err error) string {
	if errors.Is(err, ocr.ErrImageNotFound) {
		return "❌ Não consegui ler a imagem. Tente enviar a foto novamente."
	}
	if errors.Is(err, core.ErrInvalidDate) {
		return "❌ Data inválida. Use o formato AAAA-MM-DD."
	}
	return "❌ Algo deu errado ao registrar. Tente novamente em instantes."
}

func confirmationReply(entry core.Entry) string {
	emoji, typeLabel := "💸", "Despesa"
	if entry.Type == core.Sale {
		emoji, typeLabel = "💰", "Venda"
	}

	lines := []string{
		fmt.Sprintf("%s *%s registrada!*", emoji, typeLabel),
		fmt.Sprintf("📅 Data: %s", entry.Date),
		fmt.Sprintf("💵 Valor: %s", core.FormatBRL(entry.Total)),
		fmt.Sprintf("📂 Categoria: %s", entry.Category),
	}
	if len(entry.Items) > 0 {
		lines = append(lines, fmt.Sprintf("📝 Itens: %d", len(entry.Items)))
	}
	lines = append(lines, fmt.Sprintf("\n_ID: %s_", entry.ID))
	return strings.Join(lines, "\n")
}

const helpMessage = "📖 *WhatsApp Bookkeeper — Ajuda*\n\n" +
	"📷 *Foto de recibo* → Registro automático\n" +
	"💬 *Texto rápido:*\n" +
	"  • \"venda 150\" → registra venda de R$150\n" +
	"  • \"despesa 80 fornecedor\" → registra despesa\n" +
	"  • \"gasto 50 transporte\" → registra despesa\n\n" +
	"📊 *Comandos:*\n" +
	"  • \"resumo\" → resumo semanal\n" +
	"  • \"limpar\" → apaga todas as transações\n" +
	"  • \"ajuda\" → esta mensagem"

const clarificationMessage = "🤔 Não entendi. Envie:\n" +
	"• 📷 Foto de recibo\n" +
	"• \"venda 150\" ou \"despesa 50\"\n" +
	"• \"resumo\" para ver o resumo semanal\n" +
	"• \"ajuda\" para mais opções"
