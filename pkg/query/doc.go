// Package query selects items from a menu tree.
//
// Filters only ever see leaves: a menu is never asked whether it is
// vegetarian, so there is nothing to throw and nothing to answer falsely.
package query
