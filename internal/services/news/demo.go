package news

import (
	"strings"
	"time"

	"github.com/xaenox/assistant-bot/internal/models"
)

func demoTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

var demoSet = []models.Article{
	{
		Title:       "Revolutionary AI Model Achieves Human-Level Reasoning",
		Description: "OpenAI's latest model demonstrates unprecedented capabilities in logical reasoning, problem-solving, and creative thinking, marking a significant milestone in artificial intelligence development.",
		URL:         "https://example.com/ai-reasoning-breakthrough",
		Source:      "AI Research Daily",
		PublishedAt: demoTime("2024-01-07T15:30:00Z"),
		Content:     "Researchers at OpenAI have unveiled a groundbreaking AI model that demonstrates human-level reasoning across multiple domains...",
	},
	{
		Title:       "Machine Learning Transforms Drug Discovery Process",
		Description: "New ML algorithms are accelerating drug discovery by predicting molecular interactions with 95% accuracy, potentially reducing development time from years to months.",
		URL:         "https://example.com/ml-drug-discovery",
		Source:      "Biotech Innovation",
		PublishedAt: demoTime("2024-01-07T14:15:00Z"),
		Content:     "A team of researchers has developed machine learning models that can predict how different molecules will interact...",
	},
	{
		Title:       "Google Launches Advanced AI Assistant for Developers",
		Description: "Google's new AI coding assistant promises to revolutionize software development with real-time code suggestions, bug detection, and automated testing capabilities.",
		URL:         "https://example.com/google-ai-assistant",
		Source:      "TechCrunch",
		PublishedAt: demoTime("2024-01-07T13:45:00Z"),
		Content:     "Google has announced a powerful new AI assistant designed specifically for software developers...",
	},
	{
		Title:       "Deep Learning Breakthrough in Computer Vision",
		Description: "Researchers achieve 99.2% accuracy in object recognition using novel neural network architectures, opening new possibilities for autonomous vehicles and medical imaging.",
		URL:         "https://example.com/deep-learning-vision",
		Source:      "Computer Vision Weekly",
		PublishedAt: demoTime("2024-01-07T12:20:00Z"),
		Content:     "A breakthrough in deep learning has led to unprecedented accuracy in computer vision tasks...",
	},
	{
		Title:       "AI-Powered Climate Modeling Predicts Weather Patterns",
		Description: "New artificial intelligence systems are providing more accurate weather predictions and climate modeling, helping scientists better understand global climate change.",
		URL:         "https://example.com/ai-climate-modeling",
		Source:      "Climate Science Today",
		PublishedAt: demoTime("2024-01-07T11:10:00Z"),
		Content:     "Artificial intelligence is revolutionizing climate science with new predictive models...",
	},
	{
		Title:       "Neural Networks Revolutionize Financial Trading",
		Description: "Wall Street adopts advanced neural networks for high-frequency trading, achieving 40% better returns while reducing market volatility through predictive analytics.",
		URL:         "https://example.com/ai-financial-trading",
		Source:      "Financial AI Review",
		PublishedAt: demoTime("2024-01-07T10:30:00Z"),
		Content:     "Financial institutions are increasingly turning to neural networks for trading strategies...",
	},
	{
		Title:       "Machine Learning Detects Early Signs of Cancer",
		Description: "New ML algorithms can detect cancer in medical scans with 98% accuracy, often identifying tumors months before traditional methods.",
		URL:         "https://example.com/ml-cancer-detection",
		Source:      "Medical AI Advances",
		PublishedAt: demoTime("2024-01-07T09:45:00Z"),
		Content:     "Machine learning is transforming cancer diagnosis with early detection capabilities...",
	},
}

// demoArticles filters the demo set by the words of query. Broad AI and
// news queries get the whole set; queries matching nothing get the first few.
func demoArticles(query string, limit int) []models.Article {
	q := strings.ToLower(query)

	var picked []models.Article
	if containsAny(q, broadDemoTerms) {
		picked = demoSet
	} else {
		words := strings.Fields(q)
		for _, a := range demoSet {
			hay := strings.ToLower(a.Title) + "\n" + strings.ToLower(a.Description)
			if containsAny(hay, words) {
				picked = append(picked, a)
			}
		}
		if len(picked) == 0 {
			picked = demoSet[:demoFallback]
			limit = demoFallback
		}
	}

	if limit > 0 && len(picked) > limit {
		picked = picked[:limit]
	}
	out := make([]models.Article, len(picked))
	copy(out, picked)
	return out
}
