package model

import "time"

// ModelDemo is reported as modelUsed by placeholder artifacts produced without a live collaborator.
const ModelDemo = "demo-mode"

// AudioFileStatusReady marks the audio descriptor of a completed job.
const AudioFileStatusReady = "READY"

// Transcription is the cleaned speech-to-text output of an audio file.
type Transcription struct {
	ID        string    `json:"id"`
	RawText   string    `json:"rawText"`
	CleanText string    `json:"cleanText"`
	Language  string    `json:"language"`
	Duration  int       `json:"duration"`
	ModelUsed string    `json:"modelUsed"`
	WordCount int       `json:"wordCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// Definition is a term/definition pair extracted into a summary.
type Definition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// DateEvent is a dated event extracted into a summary.
type DateEvent struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

// QnA is a question/answer pair extracted into a summary.
type QnA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SummarySections holds the structured parts of a summary.
type SummarySections struct {
	Overview    string       `json:"overview"`
	KeyConcepts []string     `json:"keyConcepts"`
	Definitions []Definition `json:"definitions"`
	Dates       []DateEvent  `json:"dates"`
	QnA         []QnA        `json:"qna"`
}

// Summary is the structured summary artifact.
type Summary struct {
	ID          string          `json:"id"`
	SummaryText string          `json:"summaryText"`
	Sections    SummarySections `json:"sections"`
	ModelUsed   string          `json:"modelUsed"`
	Style       string          `json:"style"`
	Language    string          `json:"language"`
	WordCount   int             `json:"wordCount"`
	TokensUsed  int             `json:"tokensUsed"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Elaboration is the free-text study rewrite of a lecture.
type Elaboration struct {
	ID             string    `json:"id"`
	ElaboratedText string    `json:"elaboratedText"`
	ModelUsed      string    `json:"modelUsed"`
	Language       string    `json:"language"`
	WordCount      int       `json:"wordCount"`
	TokensUsed     int       `json:"tokensUsed"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ConceptNode is one node of a concept map. Type is main, secondary or detail.
type ConceptNode struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// ConceptConnection links two concept map nodes. Strength is strong, medium or weak.
type ConceptConnection struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Label    string `json:"label,omitempty"`
	Strength string `json:"strength,omitempty"`
}

// ConceptMap is the concept map artifact.
type ConceptMap struct {
	ID           string              `json:"id"`
	CentralTopic string              `json:"centralTopic"`
	Nodes        []ConceptNode       `json:"nodes"`
	Connections  []ConceptConnection `json:"connections"`
	ModelUsed    string              `json:"modelUsed"`
	Language     string              `json:"language"`
	TokensUsed   int                 `json:"tokensUsed"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// QuizQuestion is a multiple-choice question. Correct holds the letter of the right option.
type QuizQuestion struct {
	ID          int      `json:"id"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Topic       string   `json:"topic,omitempty"`
}

// Quiz is the multiple-choice quiz artifact.
type Quiz struct {
	ID           string         `json:"id"`
	Instructions string         `json:"instructions"`
	Questions    []QuizQuestion `json:"questions"`
	ModelUsed    string         `json:"modelUsed"`
	Language     string         `json:"language"`
	TokensUsed   int            `json:"tokensUsed"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// AudioFile describes the submitted audio resource in a completed job.
type AudioFile struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	Duration int    `json:"duration"`
	Language string `json:"language"`
	Status   string `json:"status"`
}

// JobResult is the composite result of a completed pipeline run.
type JobResult struct {
	JobID         string         `json:"jobId"`
	UserID        string         `json:"userId"`
	AudioFile     AudioFile      `json:"audioFile"`
	Transcription *Transcription `json:"transcription"`
	Summary       *Summary       `json:"summary"`
	Elaboration   *Elaboration   `json:"elaboration"`
	ConceptMap    *ConceptMap    `json:"conceptMap"`
	Quiz          *Quiz          `json:"quiz"`
	CompletedAt   time.Time      `json:"completedAt"`
}

// AudioInput is the audio payload handed to the gateway for transcription.
type AudioInput struct {
	Data     []byte
	FileName string
	MIMEType string
	Size     int64
	Language string
}
