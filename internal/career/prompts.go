package career

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
)

// Built-in prompts. User templates use text/template fields so overrides
// loaded from files can reference the same values by name.
var defaultPrompts = map[string]config.PromptSet{
	config.TaskResume: {
		System: "You are an expert resume parser. Return valid JSON only.",
		User: `Extract information from this resume and return as JSON:

Resume Text:
{{.Text}}

Return JSON with these exact keys:
{
    "name": "full name",
    "email": "email address",
    "phone": "phone number",
    "skills": ["skill1", "skill2", ...],
    "education": [{"degree": "...", "institution": "...", "year": "..."}],
    "experience": [{"title": "...", "company": "...", "duration": "...", "description": "..."}],
    "years_of_experience": number
}

Extract ALL skills mentioned (technical and soft skills).`,
	},

	config.TaskSkillGap: {
		System: "You are a career counselor and tech industry expert. Provide detailed, data-backed insights.",
		User: `Act as a Senior Career Coach and Tech Industry Analyst.
Analyze this career path:

Current Skills: {{join .CurrentSkills ", "}}
Target Role: {{.TargetRole}}

Provide a comprehensive, data-driven analysis in JSON format:
{
    "required_skills": ["list of top 12-15 essential technical and soft skills"],
    "missing_skills": ["skills from required_skills that the user lacks"],
    "matching_skills": ["skills from required_skills that the user has"],
    "match_percentage": 0-100,
    "trending_skills": ["top 6-8 high-growth skills for this role in 2025-2026"],
    "trending_skills_comparison": {
        "skill_name": {
            "demand": "High|Medium|Low",
            "avg_salary": "salary premium or range",
            "growth": "year over year growth",
            "reason": "why this skill matters now"
        }
    }
}

Ensure trending_skills_comparison covers the detailed stats for the top trending skills.`,
	},

	config.TaskRoadmap: {
		System: "You are a specialized technical curriculum designer. Create rigorous, university-grade roadmaps.",
		User: `Create a premium, detailed {{.Weeks}}-week learning masterclass for a {{.TargetRole}}.

Target Role: {{.TargetRole}}
Skills to Focus On: {{join .MissingSkills ", "}}

Return JSON with a "weekly_plan" array. Each week must contain:
{
    "week": week number,
    "topic": "specific, descriptive topic",
    "goal": "measurable outcome for the week",
    "what_to_learn": "concrete concepts and tools",
    "why_learn_this": "market relevance backed by facts",
    "resources": [{"title": "...", "url": "...", "type": "Video|Course|Documentation|Article", "platform": "..."}],
    "how_to_learn": "study approach",
    "mini_project": {"title": "...", "description": "...", "difficulty": "Beginner|Intermediate|Advanced"},
    "estimated_hours": number
}

CRITICAL INSTRUCTIONS:
1. No generic content. Every week must be specific to {{.TargetRole}}.
2. Week numbers must increment 1, 2, 3 ... {{.Weeks}} with no gaps or repeats.
3. Use real, existing resources with working URLs.
4. Each mini_project must be buildable in a weekend.
5. why_learn_this must use concrete market facts.`,
	},

	config.TaskInterview: {
		System: "You are a senior technical recruiter with 10+ years of experience conducting interviews.",
		User: `Generate {{.Count}} interview questions for a {{.TargetRole}} position at {{.Difficulty}} difficulty level.

Include a mix of technical, behavioral and system design questions.

Return JSON in this format:
{
    "questions": [
        {
            "question": "question text",
            "category": "technical|behavioral|system_design",
            "difficulty": "{{.Difficulty}}",
            "sample_answer_hints": "what a strong answer covers"
        }
    ]
}

CRITICAL INSTRUCTIONS:
1. Questions must be specific to the {{.TargetRole}} role.
2. Match the {{.Difficulty}} difficulty level.
3. Avoid yes/no questions.
4. Behavioral questions should invite STAR-format answers.
5. System design questions should fit the role's domain.
6. Hints must be concise.

Return exactly {{.Count}} questions.`,
	},

	config.TaskEvaluation: {
		System: "You are a fair and experienced technical interviewer providing constructive feedback.",
		User: `You are an expert interviewer evaluating a candidate's answer.

QUESTION ({{.Category}}): {{.Question}}

CANDIDATE'S ANSWER:
{{.Answer}}

Evaluate the answer and return JSON:
{
    "score": 1-10,
    "feedback": "2-3 sentences of overall feedback",
    "strengths": ["what the answer did well"],
    "improvements": ["specific, actionable improvements"]
}

EVALUATION CRITERIA:
- Technical accuracy and depth
- Structure and clarity
- Use of concrete examples
- Relevance to the question

Be constructive and encouraging while staying honest.`,
	},

	config.TaskChat: {
		User: `You are an AI Study Buddy - a helpful, encouraging career coach helping someone learn new skills.

CONTEXT:
{{.Context}}

CONVERSATION HISTORY:
{{.History}}

USER QUESTION: {{.Message}}

INSTRUCTIONS:
- If the question is vague or unclear, ask for clarification
- If it's about learning a skill, provide 2-3 actionable tips
- If it's about the roadmap, reference the specific weeks/skills mentioned above
- Be encouraging and specific
- Keep response to 2-4 sentences
- If user asks something unrelated to learning/careers, gently redirect them

YOUR RESPONSE:`,
	},
}

var templateFuncs = template.FuncMap{"join": strings.Join}

func renderTemplate(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s prompt: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", name, err)
	}
	return buf.String(), nil
}

// prompt resolves the prompt for a task and renders its user template.
// A broken override falls back to the built-in template.
func (s *Service) prompt(task string, data any) pipeline.Prompt {
	defaults := defaultPrompts[task]
	set := s.prompts.Resolve(task, defaults)

	user, err := renderTemplate(task, set.User, data)
	if err != nil {
		s.logger.LogError(err, "Prompt override failed to render, using built-in prompt", "task", task)
		user, err = renderTemplate(task, defaults.User, data)
		if err != nil {
			s.logger.LogError(err, "Built-in prompt failed to render", "task", task)
		}
	}
	return pipeline.Prompt{System: set.System, User: user}
}
