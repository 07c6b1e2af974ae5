// SPDX-FileCopyrightText: 2025 The Kepler Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ReadClock runs the clock helper at helper on the device and returns the
// monotonic clock in microseconds, the unit of trace timestamps
func ReadClock(ctx context.Context, sh Shell, helper string) (int64, error) {
	out, err := sh.Run(ctx, helper)
	if err != nil {
		return 0, fmt.Errorf("failed to read device clock: %w", err)
	}

	us, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid device clock %q: %w", strings.TrimSpace(string(out)), err)
	}
	return us, nil
}
