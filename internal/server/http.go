package server

import (
	"sync"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/ai"
	"github.com/StealthPanther/ai-career-navigator/internal/career"
	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/observability"
	"github.com/StealthPanther/ai-career-navigator/internal/store"

	"github.com/go-playground/validator/v10"
)

// ResumeParseRequest carries resume text already extracted from the uploaded file
type ResumeParseRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Filename string `json:"filename"`
	Text     string `json:"text" validate:"required"`
}

// SkillAnalyzeRequest compares current skills with a target role.
// When CurrentSkills is empty the skills of the user's latest resume are used.
type SkillAnalyzeRequest struct {
	UserID        string   `json:"userId" validate:"required_without=CurrentSkills"`
	CurrentSkills []string `json:"currentSkills"`
	TargetRole    string   `json:"targetRole" validate:"required"`
}

// RoadmapGenerateRequest asks for a week-by-week plan.
// When MissingSkills is empty the user's latest skill analysis is used.
type RoadmapGenerateRequest struct {
	UserID         string   `json:"userId" validate:"required"`
	TargetRole     string   `json:"targetRole" validate:"required"`
	MissingSkills  []string `json:"missingSkills"`
	MatchingSkills []string `json:"matchingSkills"`
	RequiredSkills []string `json:"requiredSkills"`
	Weeks          int      `json:"weeks" validate:"gte=0"`
}

// InterviewGenerateRequest creates a practice session
type InterviewGenerateRequest struct {
	UserID        string `json:"userId" validate:"required"`
	TargetRole    string `json:"targetRole" validate:"required"`
	Difficulty    string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	QuestionCount int    `json:"questionCount"`
}

// InterviewEvaluateRequest scores a single answer
type InterviewEvaluateRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// InterviewSubmitRequest completes a session
type InterviewSubmitRequest struct {
	Answers []career.AnswerSubmission `json:"answers" validate:"required,min=1,dive"`
}

// ChatRequest is one message to the study assistant
type ChatRequest struct {
	UserID    string `json:"userId" validate:"required"`
	RoadmapID string `json:"roadmapId"`
	Message   string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig

	// API Authentication, replaced when the Vault watcher sees a new secret version
	APIKeys *APIKeySet

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *LimiterManager

	Logger *apperrors.Logger

	service      *career.Service
	store        store.Store
	pool         *ai.WorkerPool
	om           *observability.ObservabilityManager
	vault        VaultClientInterface
	vaultWatcher *VaultWatcher
	validate     *validator.Validate
	now          func() time.Time
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// Deps are the collaborators the handlers call into
type Deps struct {
	Service       *career.Service
	Store         store.Store
	Pool          *ai.WorkerPool // optional, reported by /stats
	Observability *observability.ObservabilityManager
	Vault         VaultClientInterface // optional, enables API key rotation
}

// ServerConfigFrom builds a ServerConfig from the application config
func ServerConfigFrom(cfg *config.Config, version string) ServerConfig {
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Deps, logger *apperrors.Logger) *Server {
	var rateLimiter *LimiterManager
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(*cfg.RateLimit, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        NewAPIKeySet(cfg.APIKeys),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
		service:        deps.Service,
		store:          deps.Store,
		pool:           deps.Pool,
		om:             deps.Observability,
		vault:          deps.Vault,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		now:            time.Now,
	}
}

// APIKeySet is the set of accepted inbound API keys
type APIKeySet struct {
	mu   sync.RWMutex
	keys map[string]bool
}

// NewAPIKeySet builds a set, ignoring empty keys
func NewAPIKeySet(keys []string) *APIKeySet {
	s := &APIKeySet{}
	s.Replace(keys)
	return s
}

// Replace swaps the whole key set
func (s *APIKeySet) Replace(keys []string) {
	next := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			next[key] = true
		}
	}
	s.mu.Lock()
	s.keys = next
	s.mu.Unlock()
}

// Has reports whether key is accepted
func (s *APIKeySet) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[key]
}

// Len returns the number of configured keys. Zero disables authentication.
func (s *APIKeySet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
