package entity

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn of the rolling conversation log.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryPair is a (user, assistant) turn repackaged in the shape the
// managed prompt-flow endpoints expect as chat_history.
type HistoryPair struct {
	Inputs  HistoryInput  `json:"inputs"`
	Outputs HistoryOutput `json:"outputs"`
}

type HistoryInput struct {
	ChatInput string `json:"chat_input"`
}

type HistoryOutput struct {
	ChatOutput string `json:"chat_output"`
}

// User is a credential record loaded from the credentials file. The
// password field holds a bcrypt hash, never plaintext.
type User struct {
	Username     string
	Name         string
	PasswordHash string
}

// ResultFormat selects a transcript export format.
type ResultFormat string

const (
	FormatMarkdown ResultFormat = "md"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

// API DTOs

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply    string    `json:"reply"`
	Messages []Message `json:"messages"`
}

type HistoryResponse struct {
	Messages []Message `json:"messages"`
}

// FileData is an uploaded file held in memory for the duration of one
// request.
type FileData struct {
	Filename string
	Content  []byte
}

// AuditRunRequest carries everything one pipeline run needs. Zero values
// for the tuning knobs mean "use the configured defaults".
type AuditRunRequest struct {
	PublicFiles []FileData
	ClientFiles []FileData
	Questions   FileData
	RiskMemo    FileData

	CompanyName string
	BookYear    string

	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// TemplateFillRequest carries the five inputs of a template fill run.
type TemplateFillRequest struct {
	Guidelines FileData
	Transcript FileData
	Financials FileData
	Variables  FileData
	Template   FileData
}

// EmbedTarget is one configured iframe target for the UI shell.
type EmbedTarget struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// VATResult is one row of a VAT batch check.
type VATResult struct {
	Country   string    `json:"country"`
	Number    string    `json:"vat_number"`
	Status    string    `json:"status"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CheckedAt time.Time `json:"checked_at"`
}

type VATCheckRequest struct {
	Numbers []string `json:"numbers"`
}

type VATCheckResponse struct {
	Results []VATResult `json:"results"`
}
