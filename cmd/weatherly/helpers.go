package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/service"
)

// resolveLocation finds a saved location by 1-based position or by fuzzy name.
func resolveLocation(home *service.HomeService, arg string) (domain.Location, error) {
	views := home.Locations()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(views) {
			return domain.Location{}, fmt.Errorf("%w: position %d (have %d locations)", domain.ErrIndexOutOfRange, n, len(views))
		}
		return views[n-1].Location, nil
	}

	matches := home.Find(arg)
	if len(matches) == 0 {
		return domain.Location{}, fmt.Errorf("%w: no saved location matches %q", domain.ErrLocationNotFound, arg)
	}
	return matches[0].Location, nil
}

// parsePosition converts a 1-based user position to a 0-based index.
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: %w", arg, err)
	}
	return n - 1, nil
}

// promptChoice asks the user to pick one of n numbered entries.
// An empty answer cancels.
func promptChoice(in io.Reader, out io.Writer, n int) (int, bool, error) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprintf(out, "Pick a city [1-%d, enter to cancel]: ", n)
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil && err != io.EOF {
				return 0, false, fmt.Errorf("failed to read input: %w", err)
			}
			return 0, false, nil
		}
		choice, convErr := strconv.Atoi(line)
		if convErr == nil && choice >= 1 && choice <= n {
			return choice - 1, true, nil
		}
		if err != nil {
			return 0, false, nil
		}
		fmt.Fprintf(out, "Please enter a number between 1 and %d.\n", n)
	}
}

// confirm asks a yes/no question; anything but y/yes is no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
