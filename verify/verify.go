// Package verify runs static checks over a built code tree and formats what
// they find.
//
// The checks never reject a program. They flag code that converts fine but
// is probably not what the author meant:
//
//   - REPEAT: a Rept with a count of zero. The device does not define it,
//     and its body is not a block.
//   - ENDALL: the final statement is not EndAll.
//   - PSEUDO: a field holds a pseudo-value such as 0x????, which is copied
//     verbatim and cannot be checked.
package verify

// IssueType categorizes lint issues
type IssueType string

const (
	IssueRepeat IssueType = "REPEAT" // Zero-length repeat
	IssueEndAll IssueType = "ENDALL" // Program does not end with EndAll
	IssuePseudo IssueType = "PSEUDO" // Field carries a pseudo-value
)

// Warning reports whether issues of this type deserve the user's attention,
// as opposed to being informational.
func (t IssueType) Warning() bool {
	return t != IssuePseudo
}

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType              // REPEAT, ENDALL or PSEUDO
	Line    int                    // Source line, or 0 for the whole program
	Op      string                 // Operation name, or empty
	Message string                 // Human-readable description
	Details map[string]interface{} // Additional structured data
}
