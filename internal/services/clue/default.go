package clue

import "github.com/mcoot/treasurehunt-go/internal/model"

var defaultClues = []model.Clue{
	{
		Level:    1,
		Location: "Notice Board",
		Text:     "News for many, secrets for few, I stand silent, showing what's new. Where papers rest but never sleep, Your next clue hides in messages we keep.",
		Hint:     "Knowledge awaits.",
		Code:     "TREASURE_HUNT_QR_1",
	},
	{
		Level:    2,
		Location: "Library",
		Text:     "I hold kingdoms, worlds, and wars, Silent heroes behind closed doors. I speak without voice, I travel without feet. Find me where imagination and knowledge meet.",
		Hint:     "Digital brains guard your next secret.",
		Code:     "TREASURE_HUNT_QR_2",
	},
	{
		Level:    3,
		Location: "Computer Lab",
		Text:     "I type, I click, I save your time, My circuits speak in code and rhyme. Where screens glow bright and keys go tap, Your next clue hides where students map.",
		Hint:     "Energy needed.",
		Code:     "TREASURE_HUNT_QR_3",
	},
	{
		Level:    4,
		Location: "Canteen",
		Text:     "Hot or cold, sweet or spicy, You meet me daily, I'm always busy. Hunger enters, happiness leaves. Find your clue where the hungry breathe.",
		Hint:     "Where legends chase a ball.",
		Code:     "TREASURE_HUNT_QR_4",
	},
	{
		Level:    5,
		Location: "Playground",
		Text:     "Cheers roar loud, victories thrive, A place where champions run and dive. Look near the spot where goals are made, Your next clue waits in open shade.",
		Hint:     "Up or down, choose wisely.",
		Code:     "TREASURE_HUNT_QR_5",
	},
	{
		Level:    6,
		Location: "Staircase",
		Text:     "I take you higher, I take you low, Step by step, you learn and grow. I stand between floors day and night, Your clue rests where steps take flight.",
		Hint:     "Knock? No. Just search nearby.",
		Code:     "TREASURE_HUNT_QR_6",
	},
	{
		Level:    7,
		Location: "Staff Room Door",
		Text:     "Where mentors meet and plans are made, Wisdom walks here, never fades. Do not disturb, just take a peek, The answer stands where teachers speak.",
		Hint:     "Refresh and reveal.",
		Code:     "TREASURE_HUNT_QR_7",
	},
	{
		Level:    8,
		Location: "Water Cooler",
		Text:     "Crystal clear, cold and pure, A thirsty soul finds cure. Sip some joy and look around, Your next clue flows without a sound.",
		Hint:     "Where voices echo.",
		Code:     "TREASURE_HUNT_QR_8",
	},
	{
		Level:    9,
		Location: "Auditorium",
		Text:     "Stories live where crowds unite, Lights dim low, dreams take flight. Search where curtains kiss the floor, Your next clue waits at the backstage door.",
		Hint:     "Where journeys rest.",
		Code:     "TREASURE_HUNT_QR_9",
	},
	{
		Level:    10,
		Location: "Parking Area",
		Text:     "Wheels stand silent, yet they roam, Engines rest before they go home. Look where helmets guard the ride, Your next clue hides by the driver's side.",
		Hint:     "Life grows quietly.",
		Code:     "TREASURE_HUNT_QR_10",
	},
	{
		Level:    11,
		Location: "Garden / Tree",
		Text:     "Green and calm, a breath so pure, Nature's magic, peaceful cure. Under shade or by the leaves, Your clue waits where sunlight weaves.",
		Hint:     "Where authority sits.",
		Code:     "TREASURE_HUNT_QR_11",
	},
	{
		Level:    12,
		Location: "Final Treasure Point",
		Text:     "You followed clues with wit and might, Solved the riddles, reached the light. Victory smiles where leaders stand, Claim your treasure with proud command.",
		Hint:     "Congratulations!",
		Code:     "TREASURE_HUNT_QR_12",
	},
}

// Default returns the standard twelve-location hunt
func Default() *Table {
	t, err := NewTable(defaultClues)
	if err != nil {
		panic(err)
	}
	return t
}
