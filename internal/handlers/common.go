// common.go
//
// Royalty split sheets, notifications and account deletion for songwriters
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of split-sheet-webapp.
// split-sheet-webapp is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// split-sheet-webapp is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with split-sheet-webapp.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/middleware"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/models"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/types"
)

// currentUser extracts the caller set by the auth middleware
func currentUser(c *fiber.Ctx) (models.CurrentUser, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok || user.ID == "" {
		return models.CurrentUser{}, types.NewUnauthorizedError("Not authenticated")
	}
	return user, nil
}

// parseBody decodes the JSON request body, reporting malformed input as a 400
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return types.NewValidationError("Invalid request body: %v", err)
	}
	return nil
}

// parseList extracts values for key from query parameters,
// supporting both repeated keys and comma-separated values.
func parseList(c *fiber.Ctx, key string) []string {
	seen := make(map[string]struct{})
	var values []string

	args := c.Context().QueryArgs()
	for k, value := range args.All() {
		if string(k) != key {
			continue
		}
		for _, v := range strings.Split(string(value), ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}

	return values
}

// parseLimit reads ?limit=, falling back to def and clamping to max
func parseLimit(c *fiber.Ctx, def, max int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, types.NewValidationError("limit must be a positive integer")
	}
	if limit > max {
		limit = max
	}
	return limit, nil
}

// parseBool reads a boolean query flag
func parseBool(c *fiber.Ctx, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
