package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "mao de obra", Fold("  Mão de Obra "))
	assert.Equal(t, "servicos", Fold("SERVIÇOS"))
	assert.Equal(t, "metodo", Fold("Método"))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("Planilha de Serviços", "serviço"))
	assert.True(t, ContainsAny("Composição de Custos", "custo", "comp"))
	assert.False(t, ContainsAny("Resumo", "bdi", "carta"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Alfa", TitleCase("alfa"))
	assert.Equal(t, "Construtora Beta", TitleCase("CONSTRUTORA BETA"))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "R$ 420,000.00", Money(420000))
	assert.Equal(t, "R$ 50.00", Money(50))
	assert.Equal(t, "R$ 0.00", Money(0))
}
