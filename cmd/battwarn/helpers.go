package main

import (
	"fmt"
	"strconv"

	"github.com/battwarn/battwarn/pkg/client"
)

var apiClient = client.NewClient(unixSocketPath)

func parseThresholdArgs(args []string) (lower, upper int, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected two arguments: lower and upper threshold")
	}

	lower, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lower threshold: %v", err)
	}

	upper, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid upper threshold: %v", err)
	}

	if lower >= upper {
		return 0, 0, fmt.Errorf("lower threshold must be less than upper threshold, got %d >= %d", lower, upper)
	}

	return lower, upper, nil
}
