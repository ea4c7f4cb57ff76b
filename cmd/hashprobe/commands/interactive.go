package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
	"github.com/Sumatoshi-tech/hashprobe/pkg/session"
	"github.com/Sumatoshi-tech/hashprobe/pkg/terminal"
)

// maxLineBytes bounds how much of one input line is kept. The rest of a
// longer line is read and dropped, so the line still fails validation.
const maxLineBytes = 64 * 1024

const menuText = `
1. Hash a string
2. Compare two strings
3. Find a collision
4. Reverse hash lookup
5. View summary
6. View statistics
7. Save results
8. Exit`

// NewInteractiveCommand creates the interactive command.
func NewInteractiveCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Menu-driven session over stdin",
		Long: `Run the numbered menu: hash, compare, find a collision, reverse lookup,
view the summary and statistics, save results, exit.

Results accumulate for the lifetime of the session and are written to the
results file by option 7. End of input leaves the menu like option 8.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newMenu(env, env.Printer(cmd), cmd.InOrStdin()).run(cmd.Context())
		},
	}
}

type menu struct {
	env *Env
	p   *terminal.Printer
	in  *bufio.Reader
}

func newMenu(env *Env, p *terminal.Printer, r io.Reader) *menu {
	return &menu{env: env, p: p, in: bufio.NewReader(r)}
}

func (m *menu) run(ctx context.Context) error {
	m.p.Title("Hashing Tests")

	for {
		m.p.Plain(menuText)

		choice, err := m.readLine("Choose an option: ")
		if err != nil {
			return m.endOfInput(err)
		}

		quit, err := m.dispatch(ctx, strings.TrimSpace(choice))
		if err != nil {
			return m.endOfInput(err)
		}

		if quit {
			return nil
		}
	}
}

func (m *menu) dispatch(ctx context.Context, choice string) (bool, error) {
	var err error

	switch choice {
	case "1":
		err = m.hash(ctx)
	case "2":
		err = m.compare(ctx)
	case "3":
		err = m.collide(ctx)
	case "4":
		err = m.reverse(ctx)
	case "5":
		err = m.summary()
	case "6":
		err = m.statistics()
	case "7":
		err = saveResults(m.env, m.p)
	case "8":
		m.p.Success("Exiting program. Goodbye!")

		return true, nil
	default:
		m.p.Failure("Invalid choice! Try again.")

		return false, nil
	}

	return false, m.report(ctx, err)
}

// report prints an operation failure and keeps the menu running. Input
// errors and cancellation end the session.
func (m *menu) report(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) || ctx.Err() != nil {
		return err
	}

	m.p.Failure("Error: %v", err)

	return nil
}

func (m *menu) endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		m.p.Plain("")

		return nil
	}

	return err
}

func (m *menu) readLine(prompt string) (string, error) {
	fmt.Fprint(m.p.Writer(), prompt)

	var line []byte

	for {
		chunk, more, err := m.in.ReadLine()
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return session.StripLineTerminator(string(line)), nil
		}

		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}

		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}

		if room := maxLineBytes - len(line); room > 0 {
			line = append(line, chunk[:min(room, len(chunk))]...)
		}

		if !more {
			return session.StripLineTerminator(string(line)), nil
		}
	}
}

func (m *menu) hash(ctx context.Context) error {
	input, err := m.readLine("Enter a string to hash: ")
	if err != nil {
		return err
	}

	err = session.ValidateInput([]byte(input))
	if err != nil {
		return err
	}

	m.p.Title("Verbose hashing display:")

	_, err = m.env.Session.HashTraced(ctx, []byte(input), terminal.NewStepTracer(m.p.Writer(), m.p.Config()))

	return err
}

func (m *menu) compare(ctx context.Context) error {
	a, err := m.readLine("Enter the first string: ")
	if err != nil {
		return err
	}

	b, err := m.readLine("Enter the second string: ")
	if err != nil {
		return err
	}

	cmp, err := m.env.Session.Compare(ctx, []byte(a), []byte(b))
	if err != nil {
		return err
	}

	m.p.Title("Comparing hashes...")
	printComparison(m.p, a, b, cmp.HashA, cmp.HashB, cmp.Match)

	return nil
}

func (m *menu) collide(ctx context.Context) error {
	cfg := m.env.Config.Collision

	_, err := runCollision(ctx, m.env, m.p, collideOptions{
		attempts:  cfg.MaxAttempts,
		seed:      cfg.Seed,
		tableSize: cfg.TableSize,
		every:     cfg.ProgressEvery,
		delay:     cfg.Delay,
		progress:  !m.env.Quiet,
	})

	return err
}

func (m *menu) reverse(ctx context.Context) error {
	line, err := m.readLine("Enter the hash to reverse lookup (Base-10): ")
	if err != nil {
		return err
	}

	target, err := mixhash.ParseHash(line)
	if err != nil {
		return err
	}

	return runReverse(ctx, m.env, m.p, target, m.env.Config.Reverse.MaxLength, false)
}

func (m *menu) summary() error {
	m.p.Title("Summary of Hashes:")

	records := m.env.Session.Store().All()
	if len(records) == 0 {
		m.p.Plain("No results recorded yet.")

		return nil
	}

	return terminal.RenderResults(m.p.Writer(), records, m.p.Config())
}

func (m *menu) statistics() error {
	m.p.Title("Program Statistics:")

	return terminal.RenderStats(m.p.Writer(), m.env.Session.Store().Stats())
}
