package prompt

import (
	"fmt"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/uuid"

	"github.com/quorumlabs/simcore/core"
)

// ContextualPrompt is a fully resolved prompt assembly. All fragments have
// been rendered to text; Assemble and MessageTemplate are deterministic
// except for the freshly generated message id.
type ContextualPrompt struct {
	prefixes    []string
	coreContent string
	suffixes    []string
	persona     *core.Persona
	taskKeys    []string
	taskContext map[string]any
}

// Assemble renders the prompt as plain text. Sections appear in order:
// prefixes, agent context, task context, core content, suffixes. Empty
// sections are omitted and the remaining sections are separated by a blank
// line.
func (p *ContextualPrompt) Assemble() string {
	sections := make([]string, 0, len(p.prefixes)+len(p.suffixes)+3)
	for _, prefix := range p.prefixes {
		if prefix != "" {
			sections = append(sections, prefix)
		}
	}
	if s := p.personaSection(); s != "" {
		sections = append(sections, s)
	}
	if s := p.taskSection(); s != "" {
		sections = append(sections, s)
	}
	if p.coreContent != "" {
		sections = append(sections, p.coreContent)
	}
	for _, suffix := range p.suffixes {
		if suffix != "" {
			sections = append(sections, suffix)
		}
	}
	return strings.Join(sections, "\n\n")
}

// MessageTemplate renders the assembled prompt into a protocol Message with
// a freshly generated message id. The role defaults to the user role when
// empty. Empty contextID/taskID are carried through unchanged.
func (p *ContextualPrompt) MessageTemplate(contextID string, taskID a2a.TaskID, role a2a.MessageRole) *a2a.Message {
	if role == "" {
		role = a2a.MessageRoleUser
	}
	return &a2a.Message{
		ID:        uuid.NewString(),
		ContextID: contextID,
		TaskID:    taskID,
		Role:      role,
		Parts:     []a2a.Part{a2a.TextPart{Text: p.Assemble()}},
	}
}

func (p *ContextualPrompt) personaSection() string {
	if p.persona == nil {
		return ""
	}
	lines := make([]string, 0, 9)
	appendLine := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	appendLine("Agent", p.persona.Name)
	appendLine("Role", p.persona.Role)
	appendLine("Core Principles", strings.Join(p.persona.CorePrinciples, ", "))
	appendLine("Decision Framework", p.persona.DecisionFramework)
	appendLine("Communication Style", p.persona.CommunicationStyle)
	appendLine("Primary Domains", strings.Join(p.persona.PrimaryDomains, ", "))
	appendLine("Methodologies", strings.Join(p.persona.Methodologies, ", "))
	appendLine("Skills", p.persona.SkillOverview)
	appendLine("Signature Abilities", strings.Join(p.persona.SignatureAbilities, ", "))
	if len(lines) == 0 {
		return ""
	}
	return "## Agent Context\n" + strings.Join(lines, "\n")
}

func (p *ContextualPrompt) taskSection() string {
	if len(p.taskKeys) == 0 {
		return ""
	}
	lines := make([]string, 0, len(p.taskKeys))
	for _, key := range p.taskKeys {
		value := p.taskContext[key]
		if value == nil {
			continue
		}
		lines = append(lines, titleLabel(key)+": "+fmt.Sprintf("%v", value))
	}
	if len(lines) == 0 {
		return ""
	}
	return "## Task Context\n" + strings.Join(lines, "\n")
}

// titleLabel turns a snake_case key into a human readable title cased label.
func titleLabel(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Builder constructs ContextualPrompt instances fluently. The zero value is
// usable; missing optional inputs simply omit their sections.
type Builder struct {
	prefixes    []Fragment
	coreContent Fragment
	suffixes    []Fragment
	persona     *core.Persona
	taskKeys    []string
	taskContext map[string]any
}

// NewBuilder creates an empty prompt builder.
func NewBuilder() *Builder {
	return &Builder{taskContext: map[string]any{}}
}

// AddPrefix appends a static prefix section.
func (b *Builder) AddPrefix(prefix string) *Builder {
	b.prefixes = append(b.prefixes, NewFragmentFromText(prefix))
	return b
}

// AddPrefixFragment appends a prefix fragment, static or dynamic.
func (b *Builder) AddPrefixFragment(f Fragment) *Builder {
	b.prefixes = append(b.prefixes, f)
	return b
}

// SetCoreContent sets the main prompt content.
func (b *Builder) SetCoreContent(content string) *Builder {
	b.coreContent = NewFragmentFromText(content)
	return b
}

// SetCoreContentFragment sets the main prompt content from a fragment.
func (b *Builder) SetCoreContentFragment(f Fragment) *Builder {
	b.coreContent = f
	return b
}

// AddSuffix appends a static suffix section.
func (b *Builder) AddSuffix(suffix string) *Builder {
	b.suffixes = append(b.suffixes, NewFragmentFromText(suffix))
	return b
}

// AddSuffixFragment appends a suffix fragment, static or dynamic.
func (b *Builder) AddSuffixFragment(f Fragment) *Builder {
	b.suffixes = append(b.suffixes, f)
	return b
}

// WithPersona attaches an agent persona rendered into the agent context section.
func (b *Builder) WithPersona(p *core.Persona) *Builder {
	b.persona = p
	return b
}

// WithTaskContext adds a keyed task context entry. Keys keep insertion order;
// setting an existing key updates its value in place.
func (b *Builder) WithTaskContext(key string, value any) *Builder {
	if b.taskContext == nil {
		b.taskContext = map[string]any{}
	}
	if _, ok := b.taskContext[key]; !ok {
		b.taskKeys = append(b.taskKeys, key)
	}
	b.taskContext[key] = value
	return b
}

// Build resolves all fragments against the given input and returns the
// assembled prompt. The input may be nil when no dynamic fragments are used.
func (b *Builder) Build(input *core.SimulationInput) (*ContextualPrompt, error) {
	prefixes := make([]string, 0, len(b.prefixes))
	for _, f := range b.prefixes {
		text, err := f.Resolve(input)
		if err != nil {
			return nil, fmt.Errorf("resolve prefix: %w", err)
		}
		prefixes = append(prefixes, text)
	}
	coreContent, err := b.coreContent.Resolve(input)
	if err != nil {
		return nil, fmt.Errorf("resolve core content: %w", err)
	}
	suffixes := make([]string, 0, len(b.suffixes))
	for _, f := range b.suffixes {
		text, err := f.Resolve(input)
		if err != nil {
			return nil, fmt.Errorf("resolve suffix: %w", err)
		}
		suffixes = append(suffixes, text)
	}
	keys := make([]string, len(b.taskKeys))
	copy(keys, b.taskKeys)
	taskContext := make(map[string]any, len(b.taskContext))
	for k, v := range b.taskContext {
		taskContext[k] = v
	}
	return &ContextualPrompt{
		prefixes:    prefixes,
		coreContent: coreContent,
		suffixes:    suffixes,
		persona:     b.persona,
		taskKeys:    keys,
		taskContext: taskContext,
	}, nil
}
