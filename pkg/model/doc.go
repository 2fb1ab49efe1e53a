// Package model defines the broker's domain types: proof requests and offers
// as they appear on the market, and orders as the broker tracks them through
// their lifecycle (priced, locked, proving, fulfilled).
package model
