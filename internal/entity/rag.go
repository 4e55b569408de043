package entity

// Chunk is a fixed-size, overlapping word window over a source document.
// Immutable once produced.
type Chunk struct {
	Source  string `json:"source"`
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

// RetrievedChunk is a chunk returned from a nearest-neighbor query, tagged
// with its similarity to the query vector.
type RetrievedChunk struct {
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Score  float32 `json:"score"`
}

// QuestionRow is one row of the question workbook's "1300" sheet.
type QuestionRow struct {
	Row      uint32 // 1-based workbook row
	Number   string
	Question string
	Example  string
}

// AnsweredQuestion is a question with its generated answer and the
// trailing source list split off.
type AnsweredQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Sources  string `json:"sources"`
}

// PipelineStage enumerates the audit pipeline's run states.
type PipelineStage string

const (
	StageIdle           PipelineStage = "idle"
	StageIngesting      PipelineStage = "ingesting"
	StageIndexing       PipelineStage = "indexing"
	StageAnswering      PipelineStage = "answering"
	StageRiskExtraction PipelineStage = "risk_extraction"
	StageDone           PipelineStage = "done"
)

// PipelineResult is the outcome of one audit pipeline run. The workbook
// byte slices are the uploaded templates with answers and risk rows written
// back in place.
type PipelineResult struct {
	Answers       []AnsweredQuestion `json:"answers"`
	Risks         []RiskRecord       `json:"risks"`
	ChunkCount    int                `json:"chunk_count"`
	AnswersXLSX   []byte             `json:"-"`
	RiskMemoXLSX  []byte             `json:"-"`
	PublicSources []string           `json:"public_sources"`
	ClientSources []string           `json:"client_sources"`
}
