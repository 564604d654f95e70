package render

// Hotels is the ordered list of property names highlighted in answers.
// Order matters: an earlier name masks any later name it overlaps.
var Hotels = []string{
	"Hasdrubal Thalassa & Spa Mahdia",
	"Iberostar Averroes",
	"Iberostar Selection Eolia Djerba",
	"Fiesta Beach Djerba",
	"Iberostar Waves Mehari Djerba",
	"Iberostar Selection Diar El Andalous",
	"The Residence Tunis",
	"Medina Solaria & Thalasso",
}

// HighlightStyle is the inline style applied to highlighted hotel names.
const HighlightStyle = "color: #e25822; font-weight: bold;"

// HighlightColor is the terminal foreground used for hotel names.
const HighlightColor = "#e25822"
