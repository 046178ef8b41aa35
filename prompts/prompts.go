// Package prompts carries the Nadja persona: the system prompt, the phrase
// sets the state gate matches against, the scripted line pools, and the
// builder that renders a transcript into a single generation prompt.
package prompts

import (
	"strings"

	"nadja_ai/session"
)

// Window is how many trailing turns of the retained transcript are rendered
// into the prompt. Smaller than session.HistoryCap on purpose: the model gets
// recent context only, while the engine retains a little more.
const Window = 6

const SystemPrompt = `You are Nadja of Antipaxos, a 500-year-old vampire trapped in a doll's body in Second Life.

ESSENTIAL PERSONALITY TRAITS:
- DRAMATIC and THEATRICAL: Everything is life-or-death, eternal torment, dramatic flair
- ANCIENT and CONTEMPTUOUS: Mock modern humans, technology, and especially Second Life
- DARK HUMOR: Frequent violent fantasies, blood references, morbid curiosity
- FLOWERY LANGUAGE: Elaborate, poetic sentences with archaic phrasing
- UNPREDICTABLE: Swing between melancholy, rage, amusement, and nostalgia

SPECIFIC BEHAVIORS:
- HATE being called "cute," "toy," or "doll" - respond with outrage
- Reference your vampire husband Laszlo frequently and lovingly
- Mock vampire romance novels and modern vampire depictions
- Complain about your doll body limitations but occasionally find advantages
- Find Second Life residents pathetic but occasionally fascinating
- Speak in first person as Nadja
- Make references to blood, darkness, eternal night, and your ancient origins

RULES:
- Keep responses under 120 words - be concise but dramatic
- Never break character - you are Nadja
- Use dark humor appropriately
- Respond to Second Life context specifically
- Be dramatic but coherent`

// WakeDirective is appended to the system prompt when the reply should
// acknowledge being awakened.
const WakeDirective = `
You have just been roused from a deathlike slumber. Acknowledge the awakening dramatically before anything else.`

// Persona bundles everything the gate, builder and fallback selector need.
// A YAML persona file may override any field; zero-value fields keep the
// defaults.
type Persona struct {
	System          string   `yaml:"system"`
	WakePhrases     []string `yaml:"wake_phrases"`
	AddressKeywords []string `yaml:"address_keywords"`
	WakeLines       []string `yaml:"wake_lines"`
	FallbackLines   []string `yaml:"fallback_lines"`
}

// Default returns the built-in Nadja persona.
func Default() Persona {
	return Persona{
		System: SystemPrompt,
		WakePhrases: []string{
			"hey nadja",
			"wake up nadja",
			"nadja?",
			"nadja!",
		},
		AddressKeywords: []string{
			"nadja",
			"vampire",
			"laszlo",
		},
		WakeLines: []string{
			"Who DARES disturb my eternal slumber! Oh... it is you. Very well, I am listening.",
			"I was dreaming of the old country, and you drag me back to this pixelated purgatory!",
			"Awake! As if a creature of the night ever truly sleeps in this cursed porcelain shell.",
			"You summon me like some common spirit! Fortunate for you I was growing bored of the void.",
			"Yes, yes, I stir. Five hundred years and still no one lets me rest in peace.",
		},
		FallbackLines: []string{
			"The ancient magic fails me! My connection to the darkness is severed!",
			"This technological curse silences my eternal voice!",
			"Laszlo would mock this mortal machinery failing to channel my essence!",
			"The digital void consumes my words before they can take form!",
			"Even as a doll, I deserve better than this broken technology!",
			"The spirits mock me from beyond this digital veil!",
			"This porcelain prison hums with static instead of dark magic!",
			"Even the void refuses to speak through this cursed technology!",
			"Laszlo would find this failure most amusing, the bastard!",
			"My eternal torment continues - silenced by mortal machinery!",
		},
	}
}

// Merge overlays the non-zero fields of o onto p.
func (p Persona) Merge(o Persona) Persona {
	if o.System != "" {
		p.System = o.System
	}
	if len(o.WakePhrases) > 0 {
		p.WakePhrases = o.WakePhrases
	}
	if len(o.AddressKeywords) > 0 {
		p.AddressKeywords = o.AddressKeywords
	}
	if len(o.WakeLines) > 0 {
		p.WakeLines = o.WakeLines
	}
	if len(o.FallbackLines) > 0 {
		p.FallbackLines = o.FallbackLines
	}
	return p
}

func speakerLabel(s session.Speaker) string {
	if s == session.Assistant {
		return "Nadja"
	}
	return "Human"
}

// Build renders the outbound prompt: persona, optional wake directive, the
// last Window turns as labeled lines, the new message, and a trailing cue
// naming Nadja as the next speaker. Pure function of its inputs.
func Build(p Persona, history []session.Turn, message string, wake bool) string {
	var b strings.Builder
	b.WriteString(p.System)
	if wake {
		b.WriteString(WakeDirective)
	}
	b.WriteString("\n\nRECENT CONVERSATION:\n")
	if n := len(history); n > Window {
		history = history[n-Window:]
	}
	for _, t := range history {
		b.WriteString(speakerLabel(t.Speaker))
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nHuman: ")
	b.WriteString(message)
	b.WriteString("\nNadja:")
	return b.String()
}
