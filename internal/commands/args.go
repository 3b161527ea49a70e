package commands

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
)

// idArg parses the required numeric id positional argument.
func idArg(c *cli.Command) (int64, error) {
	raw := c.Args().First()
	if raw == "" {
		return 0, fmt.Errorf("an id argument is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
