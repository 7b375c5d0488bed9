package campus

// Heritage is a selectable bloodline for character setup.
type Heritage struct {
	Name        string
	Description string
}

var heritages = []Heritage{
	{Name: "Vampire", Description: "Elegant, nocturnal, and attuned to whispers carried on the moonlight."},
	{Name: "Werewolf", Description: "Fierce protectors with uncanny senses and restless energy."},
	{Name: "Siren", Description: "Silver-voiced mystics who weave tides into melody and memory."},
	{Name: "Sorcerer", Description: "Arcane scholars obsessed with spellcraft and the unknown."},
	{Name: "Gorgon", Description: "Stone-eyed strategists who can still a heartbeat with a glare."},
	{Name: "Psychic", Description: "Seers slipping between moments to glimpse the future."},
}

var hairStyles = []string{"Raven Fringe", "Cascade Locks", "Shadow Shag", "Moon Braid"}

var outfits = []string{"Violet Uniform", "Midnight Blazer", "Nightshade Cloak", "Fencing Whites", "Storm Cape"}

// Heritages returns the heritage choices in display order.
func Heritages() []Heritage {
	return append([]Heritage(nil), heritages...)
}

// HairStyles returns the hair choices in display order.
func HairStyles() []string {
	return append([]string(nil), hairStyles...)
}

// Outfits returns the outfit choices in display order.
func Outfits() []string {
	return append([]string(nil), outfits...)
}

// DefaultHeritage is used when setup is skipped.
const DefaultHeritage = "Psychic"
