package gateway

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sbobine/sbobine-api/internal/domain/model"
)

const (
	maxKeyConcepts = 8
	maxDefinitions = 10
	maxDates       = 10
	maxQnA         = 8
	maxNodes       = 12
	maxConnections = 15
	maxQuestions   = 10
	minQuizOptions = 4
)

const (
	defaultOverview         = "Riassunto non disponibile"
	defaultCentralTopic     = "Argomento della Lezione"
	defaultQuizInstructions = "Rispondi alle seguenti domande sulla lezione."
)

// ShapeSummary coerces a parsed summary object into sections, dropping entries
// missing mandatory fields and truncating each list to its cap.
func ShapeSummary(v map[string]any) model.SummarySections {
	s := model.SummarySections{
		Overview:    str(v["overview"]),
		KeyConcepts: []string{},
		Definitions: []model.Definition{},
		Dates:       []model.DateEvent{},
		QnA:         []model.QnA{},
	}
	if s.Overview == "" {
		s.Overview = defaultOverview
	}

	for _, item := range asSlice(v["keyConcepts"]) {
		if c := str(item); c != "" && len(s.KeyConcepts) < maxKeyConcepts {
			s.KeyConcepts = append(s.KeyConcepts, c)
		}
	}
	for _, obj := range objects(v["definitions"]) {
		d := model.Definition{Term: str(obj["term"]), Definition: str(obj["definition"])}
		if d.Term != "" && d.Definition != "" && len(s.Definitions) < maxDefinitions {
			s.Definitions = append(s.Definitions, d)
		}
	}
	for _, obj := range objects(v["dates"]) {
		d := model.DateEvent{Date: str(obj["date"]), Event: str(obj["event"])}
		if d.Date != "" && d.Event != "" && len(s.Dates) < maxDates {
			s.Dates = append(s.Dates, d)
		}
	}
	for _, obj := range objects(v["qna"]) {
		q := model.QnA{Question: str(obj["question"]), Answer: str(obj["answer"])}
		if q.Question != "" && q.Answer != "" && len(s.QnA) < maxQnA {
			s.QnA = append(s.QnA, q)
		}
	}
	return s
}

// SummaryText renders the readable summary: overview, numbered key concepts, bulleted definitions.
func SummaryText(s model.SummarySections) string {
	var b strings.Builder
	b.WriteString(s.Overview)
	b.WriteString("\n\n")
	if len(s.KeyConcepts) > 0 {
		b.WriteString("Concetti principali:\n")
		for i, c := range s.KeyConcepts {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%d. %s", i+1, c)
		}
		b.WriteString("\n\n")
	}
	if len(s.Definitions) > 0 {
		b.WriteString("Definizioni chiave:\n")
		for i, d := range s.Definitions {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "• %s: %s", d.Term, d.Definition)
		}
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// ShapeConceptMap keeps nodes with id and label and connections with both endpoints.
func ShapeConceptMap(v map[string]any) (string, []model.ConceptNode, []model.ConceptConnection) {
	topic := str(v["centralTopic"])
	if topic == "" {
		topic = defaultCentralTopic
	}

	nodes := []model.ConceptNode{}
	for _, obj := range objects(v["nodes"]) {
		n := model.ConceptNode{
			ID:          str(obj["id"]),
			Label:       str(obj["label"]),
			Type:        str(obj["type"]),
			Description: str(obj["description"]),
		}
		if n.ID != "" && n.Label != "" && len(nodes) < maxNodes {
			nodes = append(nodes, n)
		}
	}

	conns := []model.ConceptConnection{}
	for _, obj := range objects(v["connections"]) {
		c := model.ConceptConnection{
			From:     str(obj["from"]),
			To:       str(obj["to"]),
			Label:    str(obj["label"]),
			Strength: str(obj["strength"]),
		}
		if c.From != "" && c.To != "" && len(conns) < maxConnections {
			conns = append(conns, c)
		}
	}
	return topic, nodes, conns
}

// ShapeQuiz keeps questions with text, at least four options, an answer and an explanation.
func ShapeQuiz(v map[string]any) (string, []model.QuizQuestion) {
	instructions := str(v["instructions"])
	if instructions == "" {
		instructions = defaultQuizInstructions
	}

	questions := []model.QuizQuestion{}
	for i, obj := range objects(v["questions"]) {
		if len(questions) >= maxQuestions {
			break
		}
		q := model.QuizQuestion{
			ID:          intOr(obj["id"], i+1),
			Question:    str(obj["question"]),
			Correct:     str(obj["correct"]),
			Explanation: str(obj["explanation"]),
			Difficulty:  str(obj["difficulty"]),
			Topic:       str(obj["topic"]),
		}
		for _, opt := range asSlice(obj["options"]) {
			if o := str(opt); o != "" {
				q.Options = append(q.Options, o)
			}
		}
		if q.Question == "" || len(q.Options) < minQuizOptions || q.Correct == "" || q.Explanation == "" {
			continue
		}
		questions = append(questions, q)
	}
	return instructions, questions
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func intOr(v any, fallback int) int {
	switch t := v.(type) {
	case float64:
		if t > 0 && t == float64(int(t)) {
			return int(t)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func objects(v any) []map[string]any {
	items := asSlice(v)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
