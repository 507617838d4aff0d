package pipeline

import (
	"strings"

	"github.com/taxpj/backend/internal/domain"
)

// systemInstruction is the fixed role prompt sent with every extraction.
const systemInstruction = `Você é um perito contábil brasileiro especializado em extratos bancários.

OBJETIVO: Extrair dados de aplicações e resgates financeiros para contabilidade de empresas (PJ).

FASE 1: VALIDAÇÃO
- Verifique se o documento é um extrato bancário ou de investimentos.

FASE 2: EXTRAÇÃO
- Retorne date (YYYYMMDD), description (NOME DO PRODUTO/APLICAÇÃO), amount (valor principal), yield (rendimento bruto), irrfRetained, iof, entryType (APPLICATION ou REDEMPTION).
- No caso de resumos mensais sem resgates individuais, trate o rendimento do mês como uma transação de REDEMPTION para que o sistema calcule os impostos devidos sobre o ganho.

Retorne APENAS o JSON conforme o schema.`

// buildExtractionPrompt assembles the user prompt for a layout hint,
// including bank-specific parsing rules where we have them.
func buildExtractionPrompt(layout domain.LayoutType) string {
	var b strings.Builder
	b.WriteString("Analise este extrato do ")
	b.WriteString(string(layout))
	b.WriteString(". ")

	if layout == domain.LayoutBancoDoBrasil {
		b.WriteString(`Layout: BANCO DO BRASIL - Extrato investimentos financeiros mensal.
REGRAS ESPECÍFICAS BB:
1. Localize a seção "Resumo do mês".
2. Se "APLICAÇÕES (+)" > 0, crie transação APPLICATION.
3. Se "RESGATES (-)" > 0, crie transação REDEMPTION.
4. IMPORTANTE: Se não houver resgates mas houver "RENDIMENTO BRUTO (+)" maior que zero, crie uma transação do tipo REDEMPTION com o valor do rendimento bruto para fins de cálculo de tributação.
5. Data: Use o último dia do "Mês/ano referência" (ex: DEZEMBRO/2025 vira 20251231).
6. Campos: 'yield' é o "RENDIMENTO BRUTO (+)", 'irrfRetained' é o "IMPOSTO DE RENDA (-)", 'iof' é o campo "IOF (-)".
7. No campo 'description', coloque o nome do fundo ou produto (ex: RF Ref DI Plus Ágil).`)
	}

	return b.String()
}
