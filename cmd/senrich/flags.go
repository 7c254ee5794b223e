package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// yesNo is a boolean flag that also accepts y/yes/n/no, and means true when
// given without a value.
type yesNo bool

func (b *yesNo) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "t", "1":
		*b = true
	case "no", "n", "false", "f", "0":
		*b = false
	default:
		return fmt.Errorf("invalid boolean value: %s", strconv.Quote(s))
	}
	return nil
}

func (b *yesNo) String() string { return strconv.FormatBool(bool(*b)) }

func (b *yesNo) Type() string { return "bool" }

func yesNoVarP(fs *pflag.FlagSet, p *bool, name, shorthand, usage string) {
	fs.VarP((*yesNo)(p), name, shorthand, usage)
	fs.Lookup(name).NoOptDefVal = "true"
}

// underscoreAliases lets --ignore_case and --ignore-case name the same flag.
func underscoreAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
