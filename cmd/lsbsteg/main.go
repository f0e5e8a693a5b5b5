package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bodgit/lsbsteg"
	"github.com/bodgit/lsbsteg/container"
	"github.com/bodgit/lsbsteg/lsb"
	"github.com/urfave/cli/v2"
)

const (
	unsupported  = "Unsupported file format. Only .bmp and .ppm files are supported."
	invalidUsage = "Invalid usage."
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newSteg(c *cli.Context) *lsbsteg.Steg {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(c.App.ErrWriter)
	}
	return lsbsteg.New(c.String("marker"), logger)
}

// Checks the argument count and that the file exists with a supported
// extension, returning the file
func fileArg(c *cli.Context, nargs int) (string, error) {
	if c.NArg() != nargs {
		cli.HelpPrinter(c.App.Writer, cli.CommandHelpTemplate, c.Command)
		return "", cli.Exit(invalidUsage, 1)
	}

	file := c.Args().First()
	if _, err := os.Stat(file); err != nil {
		return "", cli.Exit(unsupported, 1)
	}
	if _, err := container.FormatFromPath(file); err != nil {
		return "", cli.Exit(unsupported, 1)
	}

	return file, nil
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "lsbsteg"
	app.Usage = "Hide messages in BMP and PPM images"
	app.Version = "1.0.0"

	// Without a command show the help but still fail
	app.Action = func(c *cli.Context) error {
		if err := cli.ShowAppHelp(c); err != nil {
			return err
		}
		if c.NArg() == 0 {
			return cli.Exit("", 1)
		}
		return cli.Exit(invalidUsage, 1)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "marker",
			EnvVars: []string{"LSBSTEG_MARKER"},
			Value:   lsb.DefaultMarker,
			Usage:   "tag prefixed to hidden messages",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "info",
			Aliases:     []string{"i"},
			Usage:       "Display information about the file",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				file, err := fileArg(c, 1)
				if err != nil {
					return err
				}

				info, err := newSteg(c).Info(file)
				if err != nil {
					return cli.Exit(err, 1)
				}
				fmt.Fprint(c.App.Writer, info)

				return nil
			},
		},
		{
			Name:        "encrypt",
			Aliases:     []string{"e"},
			Usage:       "Encrypt a message into the file",
			Description: "",
			ArgsUsage:   "FILE MESSAGE",
			Action: func(c *cli.Context) error {
				file, err := fileArg(c, 2)
				if err != nil {
					return err
				}

				warning, err := newSteg(c).Encrypt(file, c.Args().Get(1))
				if err != nil {
					return cli.Exit(fmt.Sprintf("Failed to encrypt message: %v", err), 1)
				}
				if warning != nil {
					fmt.Fprintf(c.App.ErrWriter, "Warning: %v\n", warning)
				}
				fmt.Fprintln(c.App.Writer, "Message successfully encrypted.")

				return nil
			},
		},
		{
			Name:        "decrypt",
			Aliases:     []string{"d"},
			Usage:       "Extract a message from the file",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				file, err := fileArg(c, 1)
				if err != nil {
					return err
				}

				message, err := newSteg(c).Decrypt(file)
				if err != nil {
					return cli.Exit(fmt.Sprintf("Failed to extract message: %v", err), 1)
				}
				if message == "" {
					fmt.Fprintln(c.App.Writer, "No hidden message found.")
					return nil
				}
				fmt.Fprintf(c.App.Writer, "Extracted message: '%s'\n", message)

				return nil
			},
		},
		{
			Name:        "check",
			Aliases:     []string{"c"},
			Usage:       "Check if a message can be encrypted into the file",
			Description: "",
			ArgsUsage:   "FILE MESSAGE",
			Action: func(c *cli.Context) error {
				file, err := fileArg(c, 2)
				if err != nil {
					return err
				}

				ok, err := newSteg(c).Check(file, c.Args().Get(1))
				if err != nil {
					return cli.Exit(fmt.Sprintf("Failed to check message: %v", err), 1)
				}
				if ok {
					fmt.Fprintln(c.App.Writer, "The message can be encrypted.")
				} else {
					fmt.Fprintln(c.App.Writer, "The message cannot be encrypted due to size constraints.")
				}

				return nil
			},
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
