package gateway

import (
	"time"

	"github.com/google/uuid"

	"github.com/sbobine/sbobine-api/internal/domain/model"
)

// Deterministic artifacts returned when no collaborator is configured.

const (
	demoRawText   = "Questa è una trascrizione di esempio generata dalla modalità demo."
	demoCleanText = demoRawText + " Il contenuto reale verrebbe trascritto utilizzando Whisper di OpenAI."

	demoElaboration = `# Rielaborazione della Lezione (Demo)

Questa è una rielaborazione di esempio che mostra come uno studente potrebbe riorganizzare i contenuti della lezione per studiare meglio.

## Punti Principali
- Primo concetto importante con spiegazione chiara
- Secondo argomento con esempi pratici
- Collegamenti tra i vari temi trattati

## Approfondimenti
La lezione copre aspetti fondamentali che sono essenziali per comprendere l'argomento. Ogni concetto si collega logicamente al successivo, creando un percorso di apprendimento coerente.

## Note per lo Studio
- Rivedere le definizioni principali
- Praticare con esempi simili
- Collegare con lezioni precedenti

*Questa è una versione demo. Con una chiave API OpenAI configurata, otterresti una rielaborazione personalizzata basata sul contenuto reale della tua lezione.*`
)

func demoTranscription(in model.AudioInput, now time.Time) *model.Transcription {
	return &model.Transcription{
		ID:        uuid.NewString(),
		RawText:   demoRawText,
		CleanText: demoCleanText,
		Language:  in.Language,
		Duration:  EstimateDurationSeconds(in.Size),
		ModelUsed: model.ModelDemo,
		WordCount: 25,
		CreatedAt: now,
	}
}

func demoSummary(language string, now time.Time) *model.Summary {
	return &model.Summary{
		ID:          uuid.NewString(),
		SummaryText: "Riassunto di esempio generato dalla modalità demo",
		Sections: model.SummarySections{
			Overview:    "Questo è un riassunto di esempio generato dalla modalità demo per testare l'interfaccia utente.",
			KeyConcepts: []string{"Concetto demo 1", "Concetto demo 2", "Concetto demo 3"},
			Definitions: []model.Definition{
				{Term: "Demo", Definition: "Dimostrazione del funzionamento dell'applicazione"},
			},
			Dates: []model.DateEvent{
				{Date: "2024", Event: "Anno di sviluppo dell'applicazione Sbobine"},
			},
			QnA: []model.QnA{
				{Question: "Cos'è la modalità demo?", Answer: "Una modalità che simula i risultati senza utilizzare le API reali"},
			},
		},
		ModelUsed: model.ModelDemo,
		Style:     summaryStyle,
		Language:  language,
		WordCount: 50,
		CreatedAt: now,
	}
}

func demoElaborationArtifact(language string, now time.Time) *model.Elaboration {
	return &model.Elaboration{
		ID:             uuid.NewString(),
		ElaboratedText: demoElaboration,
		ModelUsed:      model.ModelDemo,
		Language:       language,
		WordCount:      150,
		CreatedAt:      now,
	}
}

func demoConceptMap(language string, now time.Time) *model.ConceptMap {
	return &model.ConceptMap{
		ID:           uuid.NewString(),
		CentralTopic: "Argomento della Lezione (Demo)",
		Nodes: []model.ConceptNode{
			{ID: "central", Label: "Argomento Principale", Type: "main", Description: "Tema centrale della lezione"},
			{ID: "concept1", Label: "Primo Concetto", Type: "secondary", Description: "Primo argomento trattato"},
			{ID: "concept2", Label: "Secondo Concetto", Type: "secondary", Description: "Secondo argomento importante"},
			{ID: "detail1", Label: "Dettaglio 1", Type: "detail", Description: "Approfondimento del primo concetto"},
			{ID: "detail2", Label: "Dettaglio 2", Type: "detail", Description: "Approfondimento del secondo concetto"},
			{ID: "example1", Label: "Esempio Pratico", Type: "detail", Description: "Esempio applicativo"},
		},
		Connections: []model.ConceptConnection{
			{From: "central", To: "concept1", Label: "include", Strength: "strong"},
			{From: "central", To: "concept2", Label: "include", Strength: "strong"},
			{From: "concept1", To: "detail1", Label: "approfondito in", Strength: "medium"},
			{From: "concept2", To: "detail2", Label: "approfondito in", Strength: "medium"},
			{From: "concept1", To: "example1", Label: "esempio di", Strength: "weak"},
			{From: "concept2", To: "example1", Label: "applicato in", Strength: "weak"},
		},
		ModelUsed: model.ModelDemo,
		Language:  language,
		CreatedAt: now,
	}
}

func demoQuiz(language string, now time.Time) *model.Quiz {
	return &model.Quiz{
		ID:           uuid.NewString(),
		Instructions: "Quiz di verifica sulla lezione. Seleziona la risposta corretta per ogni domanda.",
		Questions: []model.QuizQuestion{
			{
				ID:       1,
				Question: "Qual è l'argomento principale trattato nella lezione?",
				Options: []string{
					"A) Primo argomento di esempio",
					"B) Argomento principale della lezione",
					"C) Terzo argomento correlato",
					"D) Argomento non trattato",
				},
				Correct:     "B",
				Explanation: "L'argomento principale è quello discusso più approfonditamente durante la lezione.",
				Difficulty:  "easy",
				Topic:       "Concetti generali",
			},
			{
				ID:       2,
				Question: "Quale tra questi è un concetto chiave della lezione?",
				Options: []string{
					"A) Concetto non rilevante",
					"B) Tema secondario",
					"C) Concetto chiave importante",
					"D) Argomento di altra materia",
				},
				Correct:     "C",
				Explanation: "I concetti chiave sono quelli fondamentali per comprendere l'argomento.",
				Difficulty:  "medium",
				Topic:       "Concetti principali",
			},
			{
				ID:       3,
				Question: "Come si applica praticamente quanto spiegato?",
				Options: []string{
					"A) Non ha applicazioni pratiche",
					"B) Solo in contesti teorici",
					"C) Attraverso esempi concreti",
					"D) Unicamente in laboratorio",
				},
				Correct:     "C",
				Explanation: "Gli esempi concreti aiutano a comprendere l'applicazione pratica dei concetti teorici.",
				Difficulty:  "medium",
				Topic:       "Applicazioni pratiche",
			},
		},
		ModelUsed: model.ModelDemo,
		Language:  language,
		CreatedAt: now,
	}
}
