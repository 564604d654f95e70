package input

// Presets are the example questions offered as one-key shortcuts, in display
// order.
var Presets = []string{
	"What are the best 4-star hotels in Sousse for a family with beach access?",
	"Recommend luxury 5-star resorts in Djerba with spa facilities",
	"Budget-friendly 3-star hotels in Hammamet with pools and kids activities",
	"All-inclusive hotels in Mahdia for couples with private beach",
}
