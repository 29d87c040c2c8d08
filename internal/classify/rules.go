package classify

// Rule pairs a category name with the ordered substring patterns that map a
// command onto it.
type Rule struct {
	Name     string   `toml:"name"`
	Patterns []string `toml:"patterns"`
}

// Rules is an ordered rule table. It must stay a slice: both entry order and
// intra-entry pattern order are tie-breaks, so a map would change outcomes.
type Rules []Rule

// DefaultRules returns the built-in rule table. Ordering constraints:
//   - "pytest" precedes "uv" so "uv run pytest" counts as a pytest run;
//   - the specific "npm install" / "npm run" entries precede the generic
//     "npm " fallback;
//   - "go test" / "go build" / "go run" match by substring containment, not
//     as a leading token.
func DefaultRules() Rules {
	return Rules{
		{Name: "pytest", Patterns: []string{"pytest"}},
		{Name: "git", Patterns: []string{"git "}},
		{Name: "go test", Patterns: []string{"go test"}},
		{Name: "go build", Patterns: []string{"go build"}},
		{Name: "go run", Patterns: []string{"go run"}},
		{Name: "npm install", Patterns: []string{"npm install", "npm ci"}},
		{Name: "npm run", Patterns: []string{"npm run"}},
		{Name: "npm", Patterns: []string{"npm "}},
		{Name: "pnpm", Patterns: []string{"pnpm "}},
		{Name: "yarn", Patterns: []string{"yarn "}},
		{Name: "uv", Patterns: []string{"uv "}},
		{Name: "pip", Patterns: []string{"pip install", "pip3 install", "pip "}},
		{Name: "python", Patterns: []string{"python ", "python3 "}},
		{Name: "cargo", Patterns: []string{"cargo "}},
		{Name: "docker", Patterns: []string{"docker ", "docker-compose"}},
		{Name: "kubectl", Patterns: []string{"kubectl "}},
		{Name: "make", Patterns: []string{"make"}},
		{Name: "search", Patterns: []string{"grep ", "rg ", "find ", "ag "}},
		{Name: "file inspection", Patterns: []string{"cat ", "head ", "tail ", "less ", "wc "}},
		{Name: "file listing", Patterns: []string{"ls ", "ls\t", "tree "}},
		{Name: "curl", Patterns: []string{"curl ", "wget "}},
	}
}
