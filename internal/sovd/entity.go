// Copyright 2025 ROS 2 MedKit Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sovd

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// EntityType identifies one of the gateway's top-level entity
// collections.
type EntityType string

// The gateway exposes exactly four entity collections. Every entity-typed
// tool argument is validated against this set before any network call.
const (
	EntityAreas      EntityType = "areas"
	EntityComponents EntityType = "components"
	EntityApps       EntityType = "apps"
	EntityFunctions  EntityType = "functions"
)

// DefaultEntityType is used when a tool call omits entity_type.
const DefaultEntityType = EntityComponents

var entityTypes = map[EntityType]struct{}{
	EntityAreas:      {},
	EntityComponents: {},
	EntityApps:       {},
	EntityFunctions:  {},
}

// idPattern restricts entity IDs, fault codes, data topics, operation
// names, parameter names, and bulk-data categories to path-safe tokens so
// they can never alter the request path or inject query syntax.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ParseEntityType validates s against the closed entity-type set. An
// empty string resolves to fallback.
func ParseEntityType(s string, fallback EntityType) (EntityType, error) {
	if s == "" {
		return fallback, nil
	}
	et := EntityType(strings.ToLower(s))
	if _, ok := entityTypes[et]; !ok {
		return "", &ValidationError{
			Field: "entity_type",
			Msg:   fmt.Sprintf("%q is not one of %s", s, entityTypeList()),
		}
	}
	return et, nil
}

// ValidateID checks that value is a non-empty path-safe identifier.
// field names the argument in the resulting error.
func ValidateID(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Msg: "must not be empty"}
	}
	if !idPattern.MatchString(value) {
		return &ValidationError{
			Field: field,
			Msg:   fmt.Sprintf("%q may only contain letters, digits, underscores and hyphens", value),
		}
	}
	return nil
}

func entityTypeList() string {
	names := make([]string, 0, len(entityTypes))
	for et := range entityTypes {
		names = append(names, string(et))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
