package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Simulated returns canned receipt text keyed by the image filename.
type Simulated struct {
	// RequireFile, when set, makes ExtractText fail for paths that do not
	// exist on disk, matching the tesseract backend's behavior.
	RequireFile bool
}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) ExtractText(_ context.Context, imagePath string) (string, error) {
	if s.RequireFile {
		if _, err := os.Stat(imagePath); err != nil {
			return "", fmt.Errorf("%w: %s", ErrImageNotFound, imagePath)
		}
	}

	filename := strings.ToLower(filepath.Base(imagePath))
	if text, ok := sampleReceipts[filename]; ok {
		return text, nil
	}
	return fmt.Sprintf("[Simulated OCR — no sample for %s]", filename), nil
}

var sampleReceipts = map[string]string{
	"receipt_sale_01.png": "RECIBO DE VENDA\n" +
		"Data: 20/01/2026\n" +
		"Cliente: Maria Silva\n" +
		"Produto: Bolo de chocolate  Qtd: 2  Valor: R$35,00\n" +
		"Produto: Brigadeiro (cento)  Qtd: 1  Valor: R$80,00\n" +
		"TOTAL: R$150,00\n" +
		"Pagamento: PIX",
	"receipt_expense_01.png": "NOTA FISCAL\n" +
		"SUPERMERCADO BOA COMPRA\n" +
		"Data: 18/01/2026\n" +
		"Farinha de trigo 5kg    R$22,50\n" +
		"Chocolate em pó 1kg     R$18,90\n" +
		"Leite condensado 6un    R$35,40\n" +
		"Manteiga 500g           R$12,00\n" +
		"Ovos 30un               R$21,00\n" +
		"TOTAL: R$109,80\n" +
		"Forma Pgto: Débito",
	"receipt_sale_02.png": "VENDA #0047\n" +
		"Data: 22/01/2026\n" +
		"Bolo de cenoura     1x  R$40,00\n" +
		"Torta de limão      1x  R$45,00\n" +
		"Salgados (cento)    2x  R$60,00\n" +
		"TOTAL: R$205,00\n" +
		"Pago em dinheiro",
	"receipt_expense_02.png": "GÁS EXPRESS LTDA\n" +
		"NF 9921  Data: 19/01/2026\n" +
		"Botijão gás 13kg  2x  R$110,00\n" +
		"Entrega                R$10,00\n" +
		"TOTAL: R$120,00",
	"receipt_expense_03.png": "RECIBO\n" +
		"Aluguel cozinha compartilhada\n" +
		"Mês: Janeiro/2026\n" +
		"Valor: R$800,00\n" +
		"Data: 05/01/2026",
}

// SampleImages lists the filenames the simulated backend knows about.
func SampleImages() []string {
	names := make([]string, 0, len(sampleReceipts))
	for name := range sampleReceipts {
		names = append(names, name)
	}
	return names
}
