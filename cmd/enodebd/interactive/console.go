// Package interactive provides the operator console of enodebd.
package interactive

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chzyer/readline"

	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/service"
)

// Controller is the part of the device service the console uses.
type Controller interface {
	Sessions() []service.SessionInfo
	Session(serial string) (service.SessionInfo, bool)
	RequestReboot(serial string) (acs.RebootRequest, error)
}

// Console reads operator commands from a terminal.
type Console struct {
	rl  *readline.Instance
	now func() time.Time
}

// New creates a console on the process terminal.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "enodebd> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("list"),
			readline.PcItem("status"),
			readline.PcItem("reboot"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl, now: time.Now}, nil
}

// Stdout returns a writer that coordinates with the prompt. Use it for
// log output while the console runs.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run reads commands for ctrl until the operator quits or input ends,
// then calls quit.
func (c *Console) Run(ctrl Controller, quit func()) {
	defer c.rl.Close()

	printHelp(c.rl.Stdout())
	for {
		line, err := c.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			quit()
			return
		}
		if Exec(c.rl.Stdout(), ctrl, c.now(), line) {
			quit()
			return
		}
	}
}

// Exec runs one command line, writing its output to w. It reports whether
// the operator asked to quit.
func Exec(w io.Writer, ctrl Controller, now time.Time, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "help", "?":
		printHelp(w)
	case "list", "ls":
		cmdList(w, ctrl, now)
	case "status", "s":
		cmdStatus(w, ctrl, args)
	case "reboot":
		cmdReboot(w, ctrl, args)
	case "quit", "exit", "q":
		fmt.Fprintln(w, "Exiting...")
		return true
	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `
enodebd commands:
  list               - List device sessions
  status <serial>    - Show the state of one device
  reboot <serial>    - Reboot a device at its next safe point
  help               - Show this help
  quit               - Stop the daemon`)
}

func cmdList(w io.Writer, ctrl Controller, now time.Time) {
	sessions := ctrl.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No device sessions.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIAL\tTYPE\tSTATE\tFLAGS\tLAST SEEN")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s ago\n",
			s.Serial, s.DeviceType, s.Status.State, flags(s.Status),
			now.Sub(s.LastSeen).Truncate(time.Second))
	}
	tw.Flush()
}

func flags(st acs.Status) string {
	var f []string
	if st.InError {
		f = append(f, "error")
	}
	if st.RebootPending {
		f = append(f, "reboot")
	}
	if !st.Connected {
		f = append(f, "offline")
	}
	if len(f) == 0 {
		return "-"
	}
	return strings.Join(f, ",")
}

func cmdStatus(w io.Writer, ctrl Controller, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: status <serial>")
		return
	}
	s, ok := ctrl.Session(args[0])
	if !ok {
		fmt.Fprintf(w, "No session for %s\n", args[0])
		return
	}
	st := s.Status
	fmt.Fprintf(w, "Serial:        %s\n", s.Serial)
	fmt.Fprintf(w, "Session:       %s\n", s.SessionID)
	fmt.Fprintf(w, "Device type:   %s\n", s.DeviceType)
	fmt.Fprintf(w, "OUI/class:     %s/%s\n", st.Device.OUI, st.Device.ProductClass)
	fmt.Fprintf(w, "Software:      %s\n", st.SoftwareVersion)
	fmt.Fprintf(w, "State:         %s (%s)\n", st.State, st.Description)
	fmt.Fprintf(w, "Flags:         %s\n", flags(st))
	if f := st.LastFault; f != nil {
		fmt.Fprintf(w, "Last fault:    %d %s in %s\n", f.Code, f.String, f.State)
	}
}

func cmdReboot(w io.Writer, ctrl Controller, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: reboot <serial>")
		return
	}
	outcome, err := ctrl.RequestReboot(args[0])
	if err != nil {
		fmt.Fprintf(w, "Reboot failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Reboot of %s %s\n", args[0], outcome)
}
