package pathclass

import "testing"

func newTestClassifier() *Classifier {
	return New(Config{URLEndpoint: "https://ik.imagekit.io/demo"})
}

func TestClassifyLocalImages(t *testing.T) {
	classifier := newTestClassifier()

	for _, candidate := range []string{
		"img/a.png",
		"./img/a.png",
		"../shared/b.jpg",
		"photo.JPEG",
		"nested/deep/c.webp",
		"anim.gif",
		"logo.svg",
		"pasted image 20240101.png",
	} {
		if got := classifier.Classify(candidate); got != LocalImage {
			t.Fatalf("Classify(%q) = %v, want LocalImage", candidate, got)
		}
	}
}

func TestClassifyNotAnImage(t *testing.T) {
	classifier := newTestClassifier()

	for _, candidate := range []string{
		"",
		"notes/today.md",
		"archive.tar.gz",
		"img/a.png?w=200",
		"img/a.png#heading",
		"no-extension",
	} {
		if got := classifier.Classify(candidate); got != NotAnImage {
			t.Fatalf("Classify(%q) = %v, want NotAnImage", candidate, got)
		}
	}
}

func TestClassifyRemote(t *testing.T) {
	classifier := newTestClassifier()

	for _, candidate := range []string{
		"https://example.com/a.png",
		"http://example.com/a.png",
		"ftp://example.com/a.png",
	} {
		if got := classifier.Classify(candidate); got != Remote {
			t.Fatalf("Classify(%q) = %v, want Remote", candidate, got)
		}
	}
}

func TestClassifyAlreadyOnCDN(t *testing.T) {
	classifier := newTestClassifier()

	for _, candidate := range []string{
		"https://ik.imagekit.io/demo/a.png",
		"https://ik.imagekit.io/other/b.jpg",
	} {
		if got := classifier.Classify(candidate); got != AlreadyOnCDN {
			t.Fatalf("Classify(%q) = %v, want AlreadyOnCDN", candidate, got)
		}
	}
}

func TestClassifyCDNHostOnly(t *testing.T) {
	classifier := New(Config{CDNHost: "cdn.example"})

	if got := classifier.Classify("https://cdn.example/a.png"); got != AlreadyOnCDN {
		t.Fatalf("expected AlreadyOnCDN for configured host, got %v", got)
	}
	if got := classifier.Classify("https://elsewhere.example/a.png"); got != Remote {
		t.Fatalf("expected Remote for foreign host, got %v", got)
	}
}

func TestSchemeDetectionRejectsRelativePaths(t *testing.T) {
	classifier := newTestClassifier()

	// A colon inside a file name must not be mistaken for a scheme.
	if got := classifier.Classify("notes/a:b.png"); got != LocalImage {
		t.Fatalf("expected LocalImage, got %v", got)
	}
}
