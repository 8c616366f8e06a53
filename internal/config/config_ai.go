package config

// Task names shared by configuration, prompts, schemas and metrics
const (
	TaskResume     = "resume"
	TaskSkillGap   = "skillGap"
	TaskRoadmap    = "roadmap"
	TaskInterview  = "interview"
	TaskEvaluation = "evaluation"
	TaskChat       = "chat"
)

// AllTasks lists every generation task in a stable order
var AllTasks = []string{TaskResume, TaskSkillGap, TaskRoadmap, TaskInterview, TaskEvaluation, TaskChat}

// applyTaskDefaults applies global defaults to task-specific configuration
func (c *Config) applyTaskDefaults(tc *TaskAIConfig) {
	if tc.Temperature == nil {
		temperature := c.AI.Temperature
		tc.Temperature = &temperature
	}
	if tc.MaxTokens == nil {
		maxTokens := c.AI.MaxTokens
		tc.MaxTokens = &maxTokens
	}
	if tc.UseSystemPrompts == nil {
		useSystem := c.AI.UseSystemPrompts
		tc.UseSystemPrompts = &useSystem
	}
}

// GetTaskConfig returns the sampling configuration for a task with global fallbacks applied
func (c *Config) GetTaskConfig(task string) TaskAIConfig {
	var tc TaskAIConfig
	switch task {
	case TaskResume:
		tc = c.AI.Tasks.Resume
	case TaskSkillGap:
		tc = c.AI.Tasks.SkillGap
	case TaskRoadmap:
		tc = c.AI.Tasks.Roadmap
	case TaskInterview:
		tc = c.AI.Tasks.Interview
	case TaskEvaluation:
		tc = c.AI.Tasks.Evaluation
	case TaskChat:
		tc = c.AI.Tasks.Chat
	}

	c.applyTaskDefaults(&tc)
	return tc
}

// For returns the prompt overrides configured for a task
func (p PromptsConfig) For(task string) PromptConfig {
	switch task {
	case TaskResume:
		return p.Resume
	case TaskSkillGap:
		return p.SkillGap
	case TaskRoadmap:
		return p.Roadmap
	case TaskInterview:
		return p.Interview
	case TaskEvaluation:
		return p.Evaluation
	case TaskChat:
		return p.Chat
	default:
		return PromptConfig{}
	}
}

// HasAPIKey reports whether the provider can authenticate without ambient credentials
func (p ProviderConfig) HasAPIKey() bool {
	return p.APIKey != "" || p.Provider == "vertex"
}
