package builder

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/api"
	auditapi "github.com/rsmnext/assistant-backend/internal/api/audit"
	authapi "github.com/rsmnext/assistant-backend/internal/api/auth"
	chatapi "github.com/rsmnext/assistant-backend/internal/api/chat"
	embedapi "github.com/rsmnext/assistant-backend/internal/api/embed"
	templateapi "github.com/rsmnext/assistant-backend/internal/api/template"
	vatapi "github.com/rsmnext/assistant-backend/internal/api/vat"
	"github.com/rsmnext/assistant-backend/internal/config"
	"github.com/rsmnext/assistant-backend/internal/integration/embedding"
	"github.com/rsmnext/assistant-backend/internal/integration/llm"
	"github.com/rsmnext/assistant-backend/internal/integration/vies"
	"github.com/rsmnext/assistant-backend/internal/pkg/credentials"
	"github.com/rsmnext/assistant-backend/internal/pkg/formatter"
	"github.com/rsmnext/assistant-backend/internal/pkg/logger"
	"github.com/rsmnext/assistant-backend/internal/pkg/validator"
	"github.com/rsmnext/assistant-backend/internal/session"
	"github.com/rsmnext/assistant-backend/internal/usecase/audit"
	"github.com/rsmnext/assistant-backend/internal/usecase/auth"
	"github.com/rsmnext/assistant-backend/internal/usecase/chat"
	"github.com/rsmnext/assistant-backend/internal/usecase/embed"
	"github.com/rsmnext/assistant-backend/internal/usecase/template"
	"github.com/rsmnext/assistant-backend/internal/usecase/vat"
)

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Load the credential file and open the session store
	creds, err := credentials.Load(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	sessions := session.NewStore(cfg.SessionTTL)
	log.Info("Credentials loaded", zap.Int("users", creds.Len()))

	// The embedding endpoint usually shares the LLM deployment key
	embeddingCfg := cfg.EmbeddingCfg
	if embeddingCfg.APIKey == "" {
		embeddingCfg.APIKey = cfg.LLMCfg.APIKey
	}

	// Initialize external service connectors (with mock support)
	var llmConnector llmConnectorIface
	var embeddingConnector audit.Embedder
	var viesConnector vat.RegistryChecker

	if cfg.EnableMocks {
		log.Info("Using mock connectors for external services")
		llmConnector = llm.NewMockConnector(log)
		embeddingConnector = embedding.NewMockConnector(log)
		viesConnector = vies.NewMockConnector(log)
	} else {
		log.Info("Using real connectors for external services")
		llmConnector = llm.NewConnector(cfg.LLMCfg, log)
		embeddingConnector = embedding.NewConnector(embeddingCfg, log)
		viesConnector = vies.NewConnector(cfg.VIESCfg, log)
	}

	// Initialize validators
	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	log.Info("Validators initialized")

	// Initialize use cases
	authUC := auth.NewUsecase(creds, sessions, log)
	chatUC := chat.NewUsecase(llmConnector, formatter.NewFactory(), cfg.MaxContextMessages, cfg.MaxHistoryPairs, log)
	auditUC := audit.NewUsecase(llmConnector, embeddingConnector, cfg.AuditCfg, log)
	vatUC := vat.NewUsecase(viesConnector, log)
	templateUC := template.NewUsecase(llmConnector, log)
	embedUC := embed.NewUsecase(cfg.EmbedCfg, log)
	log.Info("Use cases initialized")

	// Setup API handlers
	handlers := api.Handlers{
		Auth:     authapi.NewHandler(authUC),
		Chat:     chatapi.NewHandler(chatUC),
		Audit:    auditapi.NewHandler(auditUC, cfg.FileUploadCfg, fileValidator),
		VAT:      vatapi.NewHandler(vatUC),
		Template: templateapi.NewHandler(templateUC, cfg.FileUploadCfg, fileValidator),
		Embed:    embedapi.NewHandler(embedUC),
	}
	log.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(handlers, authUC, log)
	log.Info("HTTP router configured")

	// Create HTTP server. Write timeout stays generous because pipeline
	// runs stream many upstream calls before responding.
	server := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     router,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	log.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: log,
	}, nil
}

// llmConnectorIface is the union of the LLM roles the use cases consume.
type llmConnectorIface interface {
	chat.ResponseAcquirer
	audit.Completer
}
