package audit

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/config"
	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/pkg/chunker"
	"github.com/rsmnext/assistant-backend/internal/pkg/pdftext"
	"github.com/rsmnext/assistant-backend/internal/pkg/vecindex"
	"github.com/rsmnext/assistant-backend/internal/session"
)

const answerSystemTemplate = "You are a world-class corporate analysis assistant for an expert audit team. " +
	"Use the context below to answer due diligence questions. " +
	"Use the internet to answer any questions you aren't aware of the answers to.\n\n" +
	"Context:\n%s\n\n" +
	"Respond in natural, flowing English paragraphs. Do not use any markdown syntax. " +
	"Cite your sources in square brackets like [1], [2], etc. at the relevant point in the response. " +
	"At the end, include a list of the sources used, each on a new line, prefixed with the corresponding number. " +
	"Be very specific about the part of the website, and the subpage used to take the info from. " +
	"Don't just list the main page of the webpage. " +
	"Example: [1] https://example.com/example_sub_directory"

// AuditUsecase runs the retrieval pipeline: ingest PDFs, index them,
// answer the question workbook and extract the risk table.
type AuditUsecase struct {
	completer Completer
	embedder  Embedder
	cfg       config.AuditConfig
	logger    *zap.Logger
}

func NewUsecase(completer Completer, embedder Embedder, cfg config.AuditConfig, logger *zap.Logger) *AuditUsecase {
	return &AuditUsecase{
		completer: completer,
		embedder:  embedder,
		cfg:       cfg,
		logger:    logger,
	}
}

// corpus is one indexed document set. Public and client files are indexed
// separately so each question retrieves from both.
type corpus struct {
	chunks []entity.Chunk
	index  *vecindex.Index
}

func (c *corpus) empty() bool {
	return c == nil || len(c.chunks) == 0
}

// Run executes the whole pipeline synchronously and stores the result in
// the session. A second run replaces the previous result.
func (uc *AuditUsecase) Run(ctx context.Context, sess *session.Session, req *entity.AuditRunRequest) (*entity.PipelineResult, error) {
	params := chunker.Params{
		Size:    valueOr(req.ChunkSize, uc.cfg.ChunkSize),
		Overlap: valueOr(req.ChunkOverlap, uc.cfg.ChunkOverlap),
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	topK := valueOr(req.TopK, uc.cfg.TopK)
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be positive", entity.ErrInvalidParameter)
	}

	if len(req.Questions.Content) == 0 {
		return nil, fmt.Errorf("%w: question workbook", entity.ErrMissingTemplateInput)
	}
	if len(req.RiskMemo.Content) == 0 {
		return nil, fmt.Errorf("%w: risk memo template", entity.ErrMissingTemplateInput)
	}

	ctxzap.Info(ctx, "pipeline stage", zap.String("stage", string(entity.StageIngesting)))
	pubDocs, pubOrder, err := uc.extractDocs(ctx, req.PublicFiles)
	if err != nil {
		return nil, err
	}
	cliDocs, cliOrder, err := uc.extractDocs(ctx, req.ClientFiles)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "pipeline stage", zap.String("stage", string(entity.StageIndexing)))
	pub, err := uc.buildCorpus(ctx, pubDocs, pubOrder, params)
	if err != nil {
		return nil, fmt.Errorf("index public documents: %w", err)
	}
	cli, err := uc.buildCorpus(ctx, cliDocs, cliOrder, params)
	if err != nil {
		return nil, fmt.Errorf("index client documents: %w", err)
	}
	if pub.empty() && cli.empty() {
		return nil, entity.ErrEmptyCorpus
	}

	book, err := openQuestionBook(req.Questions.Content)
	if err != nil {
		return nil, err
	}
	memo, err := openMemoBook(req.RiskMemo.Content)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "pipeline stage",
		zap.String("stage", string(entity.StageAnswering)),
		zap.Int("questions", len(book.rows)),
	)
	answers, err := uc.answerQuestions(ctx, book, pub, cli, topK)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "pipeline stage", zap.String("stage", string(entity.StageRiskExtraction)))
	memo.setHeader(req.CompanyName, req.BookYear)
	risks, err := uc.extractRisks(ctx, pubDocs, pubOrder, cliDocs, cliOrder, req.CompanyName, req.BookYear)
	if err != nil {
		return nil, err
	}
	memo.writeRisks(risks)

	answersXLSX, err := book.bytes()
	if err != nil {
		return nil, err
	}
	memoXLSX, err := memo.bytes()
	if err != nil {
		return nil, err
	}

	result := &entity.PipelineResult{
		Answers:       answers,
		Risks:         risks,
		ChunkCount:    len(pub.chunks) + len(cli.chunks),
		AnswersXLSX:   answersXLSX,
		RiskMemoXLSX:  memoXLSX,
		PublicSources: pubOrder,
		ClientSources: cliOrder,
	}
	sess.SetAuditResult(result)

	ctxzap.Info(ctx, "pipeline stage",
		zap.String("stage", string(entity.StageDone)),
		zap.Int("chunks", result.ChunkCount),
		zap.Int("answers", len(answers)),
		zap.Int("risks", len(risks)),
	)
	return result, nil
}

// Result returns the last pipeline outcome of the session.
func (uc *AuditUsecase) Result(sess *session.Session) (*entity.PipelineResult, error) {
	result, ok := sess.AuditResult()
	if !ok {
		return nil, entity.ErrNoPipelineRun
	}
	return result, nil
}

// extractDocs pulls the cropped main-body text out of each PDF, keeping
// upload order.
func (uc *AuditUsecase) extractDocs(ctx context.Context, files []entity.FileData) (map[string]string, []string, error) {
	docs := make(map[string]string, len(files))
	order := make([]string, 0, len(files))
	for _, file := range files {
		text, err := pdftext.ExtractMainBody(bytes.NewReader(file.Content), int64(len(file.Content)), uc.cfg.PageMargin)
		if err != nil {
			return nil, nil, fmt.Errorf("extract %s: %w", file.Filename, err)
		}
		docs[file.Filename] = text
		order = append(order, file.Filename)
		ctxzap.Info(ctx, "document ingested",
			zap.String("filename", file.Filename),
			zap.Int("characters", len(text)),
		)
	}
	return docs, order, nil
}

func (uc *AuditUsecase) buildCorpus(ctx context.Context, docs map[string]string, order []string, params chunker.Params) (*corpus, error) {
	chunks, err := chunker.SplitAll(docs, order, params)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &corpus{}, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	index := vecindex.New()
	if err := index.Add(vectors...); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "corpus indexed", zap.Int("chunks", len(chunks)))
	return &corpus{chunks: chunks, index: index}, nil
}

func (uc *AuditUsecase) answerQuestions(ctx context.Context, book *questionBook, pub, cli *corpus, topK int) ([]entity.AnsweredQuestion, error) {
	answers := make([]entity.AnsweredQuestion, 0, len(book.rows))
	for i, q := range book.rows {
		pubHits, err := uc.retrieve(ctx, pub, q.Question, topK)
		if err != nil {
			return nil, fmt.Errorf("retrieve for question %s: %w", q.Number, err)
		}
		cliHits, err := uc.retrieve(ctx, cli, q.Question, topK)
		if err != nil {
			return nil, fmt.Errorf("retrieve for question %s: %w", q.Number, err)
		}

		system := fmt.Sprintf(answerSystemTemplate, questionContext(pubHits, cliHits, q))
		reply, err := uc.completer.Complete(ctx, system, q.Question)
		if err != nil {
			return nil, fmt.Errorf("answer question %s: %w", q.Number, err)
		}

		answer, sources := splitSources(reply)
		book.setAnswer(q.Row, answer, sources)
		answers = append(answers, entity.AnsweredQuestion{
			Question: q.Question,
			Answer:   answer,
			Sources:  sources,
		})

		ctxzap.Info(ctx, "question answered",
			zap.Int("answered", i+1),
			zap.Int("total", len(book.rows)),
		)
	}
	return answers, nil
}

func (uc *AuditUsecase) retrieve(ctx context.Context, c *corpus, query string, k int) ([]entity.RetrievedChunk, error) {
	if c.empty() {
		return nil, nil
	}

	vector, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits := c.index.Search(vector, k)
	out := make([]entity.RetrievedChunk, len(hits))
	for i, hit := range hits {
		chunk := c.chunks[hit.Ordinal]
		out[i] = entity.RetrievedChunk{
			Source: chunk.Source,
			Text:   chunk.Text,
			Score:  hit.Score,
		}
	}
	return out, nil
}

func (uc *AuditUsecase) extractRisks(
	ctx context.Context,
	pubDocs map[string]string, pubOrder []string,
	cliDocs map[string]string, cliOrder []string,
	company, year string,
) ([]entity.RiskRecord, error) {
	task := fmt.Sprintf(
		"Use the provided context to identify *sources of inherent risk*, within the enterprise %s in the year %s "+
			"and fill in each field per item of risk that you identify. Keep each field short, max 5-10 words\n",
		company, year,
	)
	system := "You are an expert audit assistant. " + task + riskSchemaInstruction + "\n\n" + documentContext(pubDocs, pubOrder, cliDocs, cliOrder)

	reply, err := uc.completer.Complete(ctx, system, task)
	if err != nil {
		return nil, fmt.Errorf("extract risks: %w", err)
	}

	risks, skipped, err := ParseRisks(reply)
	if err != nil {
		return nil, err
	}
	for _, reason := range skipped {
		ctxzap.Warn(ctx, "risk item skipped", zap.String("reason", reason))
	}
	return risks, nil
}

// questionContext assembles the retrieval context for one question, with
// the workbook's best-practice answer as a format example.
func questionContext(pub, cli []entity.RetrievedChunk, q entity.QuestionRow) string {
	var b strings.Builder
	b.WriteString("PUBLIC CONTEXT:\n")
	for _, hit := range pub {
		fmt.Fprintf(&b, "[%s] %s\n", hit.Source, hit.Text)
	}
	b.WriteString("\nCLIENT CONTEXT:\n")
	for _, hit := range cli {
		fmt.Fprintf(&b, "[%s] %s\n", hit.Source, hit.Text)
	}
	fmt.Fprintf(&b, "\nFORMAT EXAMPLE:\n Q: %s\n A: %s", q.Question, q.Example)
	b.WriteString("\nDO NOT RESPOND WITH MARKDOWN")
	return b.String()
}

// documentContext flattens the full document texts for risk extraction,
// which looks at whole documents rather than retrieved chunks.
func documentContext(pubDocs map[string]string, pubOrder []string, cliDocs map[string]string, cliOrder []string) string {
	var b strings.Builder
	b.WriteString("PUBLIC CONTEXT:\n")
	for _, name := range pubOrder {
		fmt.Fprintf(&b, "[%s]: %s\n", name, pubDocs[name])
	}
	b.WriteString("\nCLIENT CONTEXT:\n")
	for _, name := range cliOrder {
		fmt.Fprintf(&b, "[%s] %s\n", name, cliDocs[name])
	}
	return b.String()
}

// splitSources splits a reply at the first source marker. Replies without
// a source list come back whole.
func splitSources(reply string) (string, string) {
	text := strings.TrimSpace(reply)
	if idx := strings.Index(text, "\n[1]"); idx >= 0 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx:])
	}
	return text, ""
}

func valueOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
