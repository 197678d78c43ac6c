package gate

var portfolioKeywords = []string{
	// pronouns
	"you", "your", "yourself",

	// portfolio
	"portfolio", "project", "experience", "work", "job", "career", "resume", "cv",
	"skill", "education", "degree", "university", "school", "background", "gallery",
	"photo", "contact", "hire", "hiring", "freelance", "client", "achievement",
	"certification", "blog", "github", "linkedin",

	// questions
	"tell me", "describe", "explain", "what is", "who are", "how do", "how did",
	"why did", "can you", "do you", "did you", "have you", "about",

	// tech
	"golang", "javascript", "typescript", "python", "react", "node", "database", "sql",
	"postgres", "mongodb", "docker", "kubernetes", "cloud", "aws", "api", "backend",
	"frontend", "full stack", "fullstack", "machine learning", "llm", "code", "coding",
	"programming", "developer", "software", "web", "tech", "stack", "framework",
	"tailwind", "next.js", "git",

	// interests
	"hobby", "hobbies", "interest", "music", "travel", "photography", "reading", "book",
	"sport", "gaming", "game", "movie", "favorite", "favourite", "passion", "fun",
}
