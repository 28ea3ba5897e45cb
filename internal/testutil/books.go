// Package testutil provides a small, complete book catalog for tests.
package testutil

import (
	"fmt"
	"strings"

	"bookrec/internal/domain"
)

type fixture struct {
	id, title, author string
	rating            float64
	description       string
	genres            []string
}

var fixtures = []fixture{
	{"1885.Pride_and_Prejudice", "Pride and Prejudice", "Jane Austen", 4.28,
		"Elizabeth Bennet navigates manners, marriage and pride when she meets the proud Mr. Darcy in Regency England.",
		[]string{"Classics", "Fiction", "Romance", "Historical Fiction"}},
	{"5470.Pride_and_Prejudice_and_Zombies", "Pride and Prejudice and Zombies", "Seth Grahame-Smith", 3.31,
		"Elizabeth Bennet fights the zombie plague while Mr. Darcy tests her pride and her prejudice.",
		[]string{"Horror", "Fiction", "Romance", "Zombies", "Humor"}},
	{"6185.Emma", "Emma", "Jane Austen", 4.03,
		"Emma Woodhouse meddles in the marriage prospects of her friends in a small English village.",
		[]string{"Classics", "Fiction", "Romance", "Historical Fiction"}},
	{"2156.Persuasion", "Persuasion", "Jane Austen", 4.14,
		"Anne Elliot meets again the naval captain she was persuaded to refuse, and marriage returns to question.",
		[]string{"Classics", "Romance", "Fiction"}},
	{"14935.Sense_and_Sensibility", "Sense and Sensibility", "Jane Austen", 4.08,
		"Two sisters, one ruled by sense and one by sensibility, face heartbreak and marriage in England.",
		[]string{"Classics", "Romance", "Fiction", "Historical Fiction"}},
	{"10210.Jane_Eyre", "Jane Eyre", "Charlotte Bronte", 4.14,
		"An orphaned governess falls in love with her brooding employer at Thornfield Hall.",
		[]string{"Classics", "Fiction", "Romance", "Gothic"}},
	{"6148028.Wuthering_Heights", "Wuthering Heights", "Emily Bronte", 3.87,
		"A foundling's consuming passion for Catherine brings ruin to two families on the moors.",
		[]string{"Classics", "Gothic", "Romance", "Fiction"}},
	{"234225.Dune", "Dune", "Frank Herbert", 4.25,
		"Paul Atreides follows his family to the desert planet Arrakis, source of the spice melange.",
		[]string{"Science Fiction", "Fiction", "Fantasy", "Classics"}},
	{"22328.Neuromancer", "Neuromancer", "William Gibson", 3.90,
		"A washed-up hacker is hired for one last job in cyberspace against an artificial intelligence.",
		[]string{"Science Fiction", "Cyberpunk", "Fiction"}},
	{"5107.The_Catcher_in_the_Rye", "The Catcher in the Rye", "J.D. Salinger", 3.80,
		"Holden Caulfield wanders New York after being expelled from his prep school.",
		[]string{"Classics", "Fiction", "Young Adult"}},
	{"2767052.The_Hunger_Games", "The Hunger Games", "Suzanne Collins", 4.33,
		"In a dystopian future, Katniss volunteers to take her sister's place in deadly televised games.",
		[]string{"Young Adult", "Dystopia", "Fiction", "Science Fiction"}},
	{"5907.The_Hobbit", "The Hobbit", "J.R.R. Tolkien", 4.27,
		"Bilbo Baggins is swept into a quest with dwarves to reclaim treasure guarded by a dragon.",
		[]string{"Fantasy", "Classics", "Fiction", "Adventure"}},
	{"18405.Gone_with_the_Wind", "Gone with the Wind", "Margaret Mitchell", 4.30,
		"Scarlett O'Hara survives war and reconstruction in Georgia while chasing an impossible love.",
		[]string{"Classics", "Historical Fiction", "Romance", "Fiction"}},
	{"7613.Animal_Farm", "Animal Farm", "George Orwell", 3.95,
		"Farm animals overthrow their farmer and watch their revolution curdle into tyranny.",
		[]string{"Classics", "Fiction", "Dystopia", "Politics"}},
}

// Books returns a fresh copy of the fixture catalog in a fixed order.
func Books() []domain.Book {
	out := make([]domain.Book, len(fixtures))
	for i, f := range fixtures {
		quoted := make([]string, len(f.genres))
		for j, g := range f.genres {
			quoted[j] = "'" + g + "'"
		}
		out[i] = domain.Book{
			ID:          f.id,
			Title:       f.title,
			Author:      f.author,
			Rating:      f.rating,
			Description: f.description,
			ISBN:        fmt.Sprintf("97800000%05d", i),
			GenresRaw:   "[" + strings.Join(quoted, ", ") + "]",
			Genres:      append([]string(nil), f.genres...),
			CoverURL:    "https://images.example.com/" + f.id + ".jpg",
		}
	}
	return out
}

// BookByTitle returns the fixture with an exact title.
func BookByTitle(title string) domain.Book {
	for _, b := range Books() {
		if b.Title == title {
			return b
		}
	}
	panic("no fixture titled " + title)
}
