// Package team implements team formation: selecting a set of agent
// identities from the capability registry given a formation strategy and a
// desired size. Selection fails fast when the directory is empty or cannot
// supply the requested size; a short team is never silently accepted.
package team
