package domain

// Command is the closed set of instructions the bot understands.
type Command int

const (
	CommandUnknown Command = iota
	CommandStart
	CommandShowMenu
	CommandContactUs
	CommandAboutUs
)

// commandTable maps the exact raw message text to a command. Keyboard buttons
// send their label verbatim, so those labels are matched as-is.
var commandTable = map[string]Command{
	"/start":        CommandStart,
	"/menu":         CommandShowMenu,
	"📱 Contact Us": CommandContactUs,
	"ℹ️ About Us":   CommandAboutUs,
}

// Button labels shared between the reply keyboard and the classifier.
const (
	ContactUsLabel = "📱 Contact Us"
	AboutUsLabel   = "ℹ️ About Us"
)

// ClassifyCommand maps raw message text to a Command by exact match.
// Anything not in the table, including prefixes and "/cmd@bot" forms, is
// CommandUnknown.
func ClassifyCommand(text string) Command {
	if c, ok := commandTable[text]; ok {
		return c
	}
	return CommandUnknown
}

// String returns a stable, log-friendly name.
func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandShowMenu:
		return "menu"
	case CommandContactUs:
		return "contact_us"
	case CommandAboutUs:
		return "about_us"
	default:
		return "unknown"
	}
}
