// Package rules holds the domain knowledge tables of the progression engine:
// the fixed name→attribute table, the default attribute pairs, candidate XP
// bounds and the keyword fallback used when skill candidates are missing.
//
// Rules are written in CUE. A built-in rule set is embedded; a replacement
// file can be loaded with Load and is validated against the same schema.
package rules
