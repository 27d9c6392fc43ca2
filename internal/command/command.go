// Package command turns typed or spoken input into player commands.
package command

// Kind classifies what the user wants to do.
type Kind int

const (
	Unknown Kind = iota
	Play         // start rehearsal
	Stop         // stop rehearsal
	Toggle       // flip rehearsal on or off
	Next
	Prev
	Jump // Arg holds the 1-based question number as typed
	Speak
	Reveal
	Faster
	Slower
	Edit
	Back // leave the player for the category list
	Quit
	Help
)

var kindNames = map[Kind]string{
	Unknown: "unknown",
	Play:    "play",
	Stop:    "stop",
	Toggle:  "toggle",
	Next:    "next",
	Prev:    "prev",
	Jump:    "jump",
	Speak:   "speak",
	Reveal:  "reveal",
	Faster:  "faster",
	Slower:  "slower",
	Edit:    "edit",
	Back:    "back",
	Quit:    "quit",
	Help:    "help",
}

// String returns the command's canonical name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is a parsed user action.
type Command struct {
	Kind Kind
	Arg  string
}
