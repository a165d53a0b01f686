package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"livrocaixa/internal/ai"
	"livrocaixa/internal/amqp"
	"livrocaixa/internal/core"
	"livrocaixa/internal/ledger"
	"livrocaixa/internal/ocr"
	"livrocaixa/internal/storage"
)

type capturingPublisher struct {
	events []*amqp.LedgerEvent
	err    error
}

func (p *capturingPublisher) PublishEvent(_ context.Context, event *amqp.LedgerEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type fakeAssistant struct {
	summary    string
	summaryErr error
}

func (a *fakeAssistant) Classify(context.Context, string) (string, error) {
	return "", ai.ErrAssistantDisabled
}

func (a *fakeAssistant) Summarize(context.Context, string) (string, error) {
	return a.summary, a.summaryErr
}

func (a *fakeAssistant) Enabled() bool { return true }

func newTestBookkeeper(t *testing.T, opts ...Option) (*Bookkeeper, *ledger.Ledger) {
	t.Helper()
	l := ledger.New(storage.NewMemory())
	b := NewBookkeeper(l, ocr.NewSimulated(), ai.NewDisabled(), opts...)
	return b, l
}

func TestRecordReceiptSale(t *testing.T) {
	ctx := context.Background()
	b, l := newTestBookkeeper(t)

	reply, err := b.RecordReceipt(ctx, "receipt_sale_01.png", "")
	if err != nil {
		t.Fatalf("RecordReceipt: %v", err)
	}

	for _, want := range []string{
		"💰 *Venda registrada!*",
		"📅 Data: 2026-01-20",
		"💵 Valor: R$150,00",
		"📂 Categoria: sales",
		"📝 Itens: 2",
		"_ID: ",
	} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}

	entries, err := l.Get(ctx, "", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != core.Sale || entries[0].Category != "sales" {
		t.Errorf("ledger after receipt = %+v", entries)
	}
}

func TestRecordReceiptExpenseCategorizedByKeyword(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBookkeeper(t)

	// The rent receipt mentions "aluguel", which the rule table maps.
	reply, err := b.RecordReceipt(ctx, "receipt_expense_03.png", "")
	if err != nil {
		t.Fatalf("RecordReceipt: %v", err)
	}

	for _, want := range []string{
		"💸 *Despesa registrada!*",
		"📅 Data: 2026-01-05",
		"💵 Valor: R$800,00",
		"📂 Categoria: rent",
	} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}
	if strings.Contains(reply, "📝 Itens:") {
		t.Errorf("itemless receipt reply lists items:\n%s", reply)
	}
}

func TestRecordReceiptUnreadableImage(t *testing.T) {
	l := ledger.New(storage.NewMemory())
	b := NewBookkeeper(l, &ocr.Simulated{RequireFile: true}, ai.NewDisabled())

	_, err := b.RecordReceipt(context.Background(), "/nope/receipt.png", "")
	if !errors.Is(err, ocr.ErrImageNotFound) {
		t.Fatalf("error = %v, want ErrImageNotFound", err)
	}
	if reply := ErrorReply(err); !strings.Contains(reply, "Não consegui ler a imagem") {
		t.Errorf("ErrorReply = %q", reply)
	}

	entries, _ := l.Get(context.Background(), "", "")
	if len(entries) != 0 {
		t.Errorf("failed receipt left entries behind: %+v", entries)
	}
}

func TestProcessMessageCommands(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBookkeeper(t)

	tests := []struct {
		text     string
		contains string
	}{
		{"resumo", "Nenhuma transação registrada"},
		{"Resumo Semanal", "Nenhuma transação registrada"},
		{"ajuda", "WhatsApp Bookkeeper — Ajuda"},
		{"?", "WhatsApp Bookkeeper — Ajuda"},
		{"limpar", "🗑️ Livro-caixa limpo"},
		{"bom dia", "🤔 Não entendi"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			reply, err := b.ProcessMessage(ctx, tt.text)
			if err != nil {
				t.Fatalf("ProcessMessage(%q): %v", tt.text, err)
			}
			if !strings.Contains(reply, tt.contains) {
				t.Errorf("reply to %q missing %q:\n%s", tt.text, tt.contains, reply)
			}
		})
	}
}

func TestProcessMessageQuickEntryAndSummary(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBookkeeper(t)

	reply, err := b.ProcessMessage(ctx, "venda 150 bolo de pote")
	if err != nil {
		t.Fatalf("quick entry: %v", err)
	}
	if !strings.Contains(reply, "💰 *Venda registrada!*") ||
		!strings.Contains(reply, "💵 Valor: R$150,00") {
		t.Errorf("quick entry reply:\n%s", reply)
	}

	if _, err := b.ProcessMessage(ctx, "despesa 50 fornecedor"); err != nil {
		t.Fatalf("quick expense: %v", err)
	}

	summary, err := b.ProcessMessage(ctx, "resumo")
	if err != nil {
		t.Fatalf("resumo: %v", err)
	}
	for _, want := range []string{
		"📊 *Resumo Semanal*",
		"💰 Vendas: R$150,00 (1 transação(ões))",
		"💸 Despesas: R$50,00 (1 transação(ões))",
		"✅ Lucro: R$100,00",
		"💡 *Ação:*",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestClearPublishesEventAndFiresHook(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{}
	mutations := 0

	b, l := newTestBookkeeper(t, WithPublisher(pub), WithMutationHook(func() { mutations++ }))

	if _, err := b.ProcessMessage(ctx, "venda 85 encomenda de bolo"); err != nil {
		t.Fatalf("quick entry: %v", err)
	}
	if _, err := b.ProcessMessage(ctx, "limpar"); err != nil {
		t.Fatalf("limpar: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.events[0].Kind != amqp.EventEntryRecorded || pub.events[1].Kind != amqp.EventLedgerCleared {
		t.Errorf("event kinds = %s, %s", pub.events[0].Kind, pub.events[1].Kind)
	}
	if pub.events[0].Total != "85" || pub.events[0].EntryType != "sale" {
		t.Errorf("recorded event = %+v", pub.events[0])
	}
	if mutations != 2 {
		t.Errorf("mutation hook fired %d times, want 2", mutations)
	}

	entries, _ := l.Get(ctx, "", "")
	if len(entries) != 0 {
		t.Errorf("ledger not empty after limpar: %+v", entries)
	}
}

func TestPublisherFailureDoesNotFailRecording(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{err: errors.New("broker down")}
	b, l := newTestBookkeeper(t, WithPublisher(pub))

	reply, err := b.ProcessMessage(ctx, "venda 40")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !strings.Contains(reply, "registrada") {
		t.Errorf("reply = %q", reply)
	}

	entries, _ := l.Get(ctx, "", "")
	if len(entries) != 1 {
		t.Errorf("entry not recorded despite broker failure: %+v", entries)
	}
}

func TestWeeklySummaryPrefersAssistant(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(storage.NewMemory())
	assistant := &fakeAssistant{summary: "📊 Resumo reescrito pela IA"}
	b := NewBookkeeper(l, ocr.NewSimulated(), assistant)

	if _, err := b.ProcessMessage(ctx, "venda 100"); err != nil {
		t.Fatalf("quick entry: %v", err)
	}

	got, err := b.WeeklySummary(ctx, "")
	if err != nil {
		t.Fatalf("WeeklySummary: %v", err)
	}
	if got != "📊 Resumo reescrito pela IA" {
		t.Errorf("summary = %q, want assistant rephrasing", got)
	}
}

func TestWeeklySummaryFallsBackOnAssistantError(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(storage.NewMemory())
	assistant := &fakeAssistant{summaryErr: errors.New("model overloaded")}
	b := NewBookkeeper(l, ocr.NewSimulated(), assistant)

	if _, err := b.ProcessMessage(ctx, "venda 100"); err != nil {
		t.Fatalf("quick entry: %v", err)
	}

	got, err := b.WeeklySummary(ctx, "")
	if err != nil {
		t.Fatalf("WeeklySummary: %v", err)
	}
	if !strings.Contains(got, "📊 *Resumo Semanal*") {
		t.Errorf("fallback summary = %q", got)
	}
}

func TestSummaryRangeLabels(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBookkeeper(t)

	got, err := b.Summary(ctx, "", "")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.Contains(got, "Resumo Geral") {
		t.Errorf("unbounded summary label: %q", got)
	}

	got, err = b.Summary(ctx, "2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("Summary(range): %v", err)
	}
	if !strings.Contains(got, "Resumo do Período") {
		t.Errorf("ranged summary label: %q", got)
	}
}
