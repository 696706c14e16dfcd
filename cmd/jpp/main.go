// Command jpp evaluates an RFC 9535 JSONPath query against a JSON
// document read from a file or stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jppquery/jsonpath"
	"github.com/jppquery/jsonpath/value"
)

const version = "0.1.0"

const usage = "Usage: jpp [OPTIONS] <QUERY> [FILE]"

const helpText = `jpp ` + version + ` - JSONPath processor (RFC 9535)

` + usage + `

Arguments:
  <QUERY>    JSONPath query (RFC 9535 format)
  [FILE]     Input JSON file (reads from stdin if omitted)

Options:
  -h, --help     Show this help message
  -V, --version  Show version`

// parsedArgs is the result of classifying the command line into one of
// help, version, or a query against an optional file.
type parsedArgs struct {
	help    bool
	version bool
	query   string
	file    string
	hasFile bool
}

func parseArgs(args []string) (parsedArgs, error) {
	if len(args) == 0 {
		return parsedArgs{}, fmt.Errorf("missing required argument: <QUERY>\n\n%s\n\nFor more information, try '--help'", usage)
	}

	var positional []string
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return parsedArgs{help: true}, nil
		case "-V", "--version":
			return parsedArgs{version: true}, nil
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return parsedArgs{}, fmt.Errorf("unknown option: %s\n\n%s\n\nFor more information, try '--help'", arg, usage)
			}
			positional = append(positional, arg)
		}
	}

	switch len(positional) {
	case 0:
		return parsedArgs{}, fmt.Errorf("missing required argument: <QUERY>\n\n%s\n\nFor more information, try '--help'", usage)
	case 1:
		return parsedArgs{query: positional[0]}, nil
	case 2:
		return parsedArgs{query: positional[0], file: positional[1], hasFile: true}, nil
	default:
		return parsedArgs{}, fmt.Errorf("too many arguments\n\n%s\n\nFor more information, try '--help'", usage)
	}
}

func readInput(file string, hasFile bool, stdin io.Reader) ([]byte, error) {
	if hasFile {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file '%s': %w", file, err)
		}
		return data, nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("error reading stdin: %w", err)
	}
	return data, nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	if parsed.help {
		fmt.Fprintln(stdout, helpText)
		return nil
	}
	if parsed.version {
		fmt.Fprintf(stdout, "jpp %s\n", version)
		return nil
	}

	input, err := readInput(parsed.file, parsed.hasFile, stdin)
	if err != nil {
		return err
	}

	doc, err := value.Decode(input)
	if err != nil {
		return fmt.Errorf("error parsing JSON: %w", err)
	}

	path, err := jsonpath.Parse(parsed.query)
	if err != nil {
		return fmt.Errorf("error parsing JSONPath query: %w", err)
	}

	results := path.Select(doc)

	out, err := value.EncodeArray(results, "  ")
	if err != nil {
		return fmt.Errorf("error serializing output: %w", err)
	}

	fmt.Fprint(stdout, string(out))
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "jpp: %s\n", err)
		os.Exit(1)
	}
}
