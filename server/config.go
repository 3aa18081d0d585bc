package server

import (
	"github.com/urfave/cli/v2"
)

// Config holds the flags a client (or a developer running mlsp by
// hand) can set, adapted from the teacher's FaustProjectConfig
// defaulting idiom: zero values mean "not set". applyDefaults can fill
// LibPath from the workspace root, but nothing calls it, so an unset
// LibPath stays empty.
type Config struct {
	LibPath []string
	Socket  bool
	Addr    string
}

// applyDefaults mirrors FaustProjectConfig's post-unmarshal defaulting:
// with no --path given, the workspace root itself is the only place to
// look up functions.
func (c *Config) applyDefaults(root string) {
	if len(c.LibPath) == 0 && root != "" {
		c.LibPath = []string{root}
	}
}

// ParseConfig builds a Config from argv using urfave/cli, the way
// standardbeagle-lci's cmd/lci/main.go parses its own flags.
func ParseConfig(args []string) (Config, error) {
	var cfg Config
	app := &cli.App{
		Name:                   "mlsp",
		Usage:                  "Language server for MATLAB",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Additional MATLAB library paths to index",
				EnvVars: []string{"MLSP_PATH"},
			},
			&cli.BoolFlag{
				Name:  "socket",
				Usage: "Listen on a TCP socket instead of stdio",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Socket address to listen on when --socket is set",
				Value: "",
			},
		},
		Action: func(c *cli.Context) error {
			cfg.LibPath = c.StringSlice("path")
			cfg.Socket = c.Bool("socket")
			cfg.Addr = c.String("addr")
			return nil
		},
	}
	if err := app.Run(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
