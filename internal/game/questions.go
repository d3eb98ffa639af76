package game

// Question pairs a prompt with its accepted answer.
type Question struct {
	Prompt string
	Answer string
}

// DefaultQuestions is the built-in capital-city pool.
var DefaultQuestions = []Question{
	{"What is the capital of France?", "Paris"},
	{"What is the capital of Japan?", "Tokyo"},
	{"What is the capital of Brazil?", "Brasília"},
	{"What is the capital of Canada?", "Ottawa"},
	{"What is the capital of Australia?", "Canberra"},
	{"What is the capital of Germany?", "Berlin"},
	{"What is the capital of Egypt?", "Cairo"},
	{"What is the capital of India?", "New Delhi"},
	{"What is the capital of Russia?", "Moscow"},
	{"What is the capital of South Africa?", "Pretoria"},
	{"What is the capital of Italy?", "Rome"},
	{"What is the capital of China?", "Beijing"},
	{"What is the capital of Mexico?", "Mexico City"},
	{"What is the capital of Argentina?", "Buenos Aires"},
	{"What is the capital of South Korea?", "Seoul"},
	{"What is the capital of Spain?", "Madrid"},
	{"What is the capital of United Kingdom?", "London"},
	{"What is the capital of United States?", "Washington DC"},
	{"What is the capital of Saudi Arabia?", "Riyadh"},
	{"What is the capital of Turkey?", "Ankara"},
}
