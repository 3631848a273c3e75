package gateway

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbobine/sbobine-api/internal/domain/model"
)

func TestShapeSummary_DefaultsAndCaps(t *testing.T) {
	concepts := make([]any, 0, 12)
	for i := range 12 {
		concepts = append(concepts, fmt.Sprintf("concetto %d", i+1))
	}
	in := map[string]any{
		"keyConcepts": concepts,
		"definitions": []any{
			map[string]any{"term": "Entropia", "definition": "Misura del disordine"},
			map[string]any{"term": "Solo termine"},
			"non un oggetto",
		},
		"dates": "non un array",
		"qna": []any{
			map[string]any{"question": "Perché?", "answer": "Perché sì"},
		},
	}

	got := ShapeSummary(in)
	assert.Equal(t, "Riassunto non disponibile", got.Overview)
	assert.Len(t, got.KeyConcepts, 8)
	assert.Equal(t, []model.Definition{{Term: "Entropia", Definition: "Misura del disordine"}}, got.Definitions)
	assert.NotNil(t, got.Dates)
	assert.Empty(t, got.Dates)
	assert.Len(t, got.QnA, 1)
}

func TestSummaryText(t *testing.T) {
	text := SummaryText(model.SummarySections{
		Overview:    "Panoramica.",
		KeyConcepts: []string{"Uno", "Due"},
		Definitions: []model.Definition{{Term: "A", Definition: "prima lettera"}},
	})
	assert.Equal(t, "Panoramica.\n\nConcetti principali:\n1. Uno\n2. Due\n\nDefinizioni chiave:\n• A: prima lettera", text)

	assert.Equal(t, "Solo panoramica", SummaryText(model.SummarySections{Overview: "Solo panoramica"}))
}

func TestShapeConceptMap(t *testing.T) {
	nodes := make([]any, 0, 14)
	for i := range 14 {
		nodes = append(nodes, map[string]any{"id": fmt.Sprintf("n%d", i), "label": fmt.Sprintf("Nodo %d", i)})
	}
	nodes = append(nodes, map[string]any{"id": "senza-label"})

	conns := make([]any, 0, 20)
	for i := range 20 {
		conns = append(conns, map[string]any{"from": "n0", "to": fmt.Sprintf("n%d", i%12), "strength": "weak"})
	}
	conns = append([]any{map[string]any{"from": "n0"}}, conns...)

	topic, gotNodes, gotConns := ShapeConceptMap(map[string]any{
		"centralTopic": "Termodinamica",
		"nodes":        nodes,
		"connections":  conns,
	})
	assert.Equal(t, "Termodinamica", topic)
	assert.Len(t, gotNodes, 12)
	assert.Len(t, gotConns, 15)
	assert.Equal(t, "n1", gotConns[1].To)

	topic, gotNodes, gotConns = ShapeConceptMap(map[string]any{})
	assert.Equal(t, "Argomento della Lezione", topic)
	assert.Empty(t, gotNodes)
	assert.Empty(t, gotConns)
}

func TestShapeQuiz(t *testing.T) {
	valid := func(id any) map[string]any {
		return map[string]any{
			"id":          id,
			"question":    "Domanda?",
			"options":     []any{"A) uno", "B) due", "C) tre", "D) quattro"},
			"correct":     "A",
			"explanation": "Perché sì",
			"difficulty":  "easy",
		}
	}
	questions := []any{
		valid(float64(7)),
		map[string]any{"question": "Poche opzioni", "options": []any{"A", "B"}, "correct": "A", "explanation": "x"},
		map[string]any{"question": "Senza spiegazione", "options": []any{"A", "B", "C", "D"}, "correct": "A"},
	}
	for range 12 {
		questions = append(questions, valid(nil))
	}

	instructions, got := ShapeQuiz(map[string]any{"questions": questions})
	assert.Equal(t, "Rispondi alle seguenti domande sulla lezione.", instructions)
	require.Len(t, got, 10)
	assert.Equal(t, 7, got[0].ID)
	assert.Equal(t, 4, got[1].ID)
	for _, q := range got {
		assert.GreaterOrEqual(t, len(q.Options), 4)
		assert.NotEmpty(t, q.Correct)
	}
}
