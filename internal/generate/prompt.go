package generate

import "fmt"

// systemPrompt is the fixed system role for blog text generation.
const systemPrompt = "You are a professional blog writer. Generate high-quality, engaging blog posts with proper structure and SEO optimization."

// BuildBlogPrompt assembles the chat instruction for one blog generation.
// The response contract is three tagged sections: TITLE:, META:, CONTENT:.
func BuildBlogPrompt(masterPrompt, topic, style string, titleLength, contentLength, metaLength int) string {
	return fmt.Sprintf(`Using this master prompt as your guide: %q

Create a blog post about: %q

Style: %s

Requirements:
1. Title: Create an engaging, SEO-friendly title (max %d characters)
2. Content: Write %d words of high-quality, informative content
3. Meta Description: Create an SEO-optimized meta description (max %d characters)

Format your response exactly like this:
TITLE: [Your title here]
META: [Your meta description here]
CONTENT: [Your content here]

Make sure the content is well-structured with paragraphs, engaging, and provides value to readers.`,
		masterPrompt, topic, style, titleLength, contentLength, metaLength)
}

// BuildImagePromptRequest asks the chat model to write an image prompt for a
// blog header image.
func BuildImagePromptRequest(title, topic string) string {
	return fmt.Sprintf(`Create a detailed, professional image prompt for a blog header image.

Blog Title: %q
Topic: %q

Requirements:
- Professional, modern design
- Suitable for blog headers
- Relevant to the topic
- No text overlay
- High contrast and good composition
- Clean, minimalistic style
- Suitable for both light and dark themes

Generate a detailed, creative prompt that will produce an excellent image. Focus on visual elements, colors, and composition.`,
		title, topic)
}

// FallbackImagePrompt builds a deterministic image prompt without a model
// call, used when the chat-built prompt fails.
func FallbackImagePrompt(title, topic string) string {
	return fmt.Sprintf(`Create a professional, high-quality blog header image for a blog post titled %q about %q.

Requirements:
- Modern, clean design
- Professional appearance
- Relevant to the topic
- Suitable for blog headers
- No text overlay
- High contrast and good composition
- Suitable for both light and dark themes

Style: Professional, modern, clean, minimalistic`,
		title, topic)
}
