package cli

// StringFlag is a definition of a command flag expected to be parsed as a
// string.
//
// - implements cli.Flag
type StringFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    string
	EnvVars  []string
}

// Flag implements cli.Flag.
func (flag StringFlag) Flag() {}

// PathFlag is a definition of a command flag expected to be parsed as a path
// to a file.
//
// - implements cli.Flag
type PathFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    string
}

// Flag implements cli.Flag.
func (flag PathFlag) Flag() {}

// IntFlag is a definition of a command flag expected to be parsed as a integer.
//
// - implements cli.Flag
type IntFlag struct {
	Name     string
	Usage    string
	Required bool
	Value    int
}

// Flag implements cli.Flag.
func (flag IntFlag) Flag() {}

// BoolFlag is a definition of a command flag expected to be parsed as a
// boolean.
//
// - implements cli.Flag
type BoolFlag struct {
	Name  string
	Usage string
	Value bool
}

// Flag implements cli.Flag.
func (flag BoolFlag) Flag() {}
