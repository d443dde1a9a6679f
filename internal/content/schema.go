package content

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/ruangkarya/ruangkarya/internal/model"
)

// DefaultAuthor is assigned to posts without an author.
const DefaultAuthor = "Your Name"

var repositoryPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

var isoDate = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if model.ParseDate(s).IsZero() {
		return errors.New("must be an ISO-8601 date")
	}
	return nil
})

type postFrontMatter struct {
	Published   bool     `json:"published"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Excerpt     string   `json:"excerpt"`
	Date        string   `json:"date"`
	Updated     string   `json:"updated"`
	Author      string   `json:"author"`
	ReadTime    string   `json:"readTime"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	ImageAlt    string   `json:"imageAlt"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
	Draft       bool     `json:"draft"`
}

func (fm *postFrontMatter) Validate() error {
	return validation.ValidateStruct(fm,
		validation.Field(&fm.Title, validation.Required, validation.RuneLength(0, 99)),
		validation.Field(&fm.Description, validation.RuneLength(0, 200)),
		validation.Field(&fm.Excerpt, validation.Required, validation.RuneLength(0, 300)),
		validation.Field(&fm.Date, validation.Required, isoDate),
		validation.Field(&fm.Updated, isoDate),
		validation.Field(&fm.Category, validation.Required),
		validation.Field(&fm.Tags, validation.Each(validation.Required)),
	)
}

func decodePost(f fields) (postFrontMatter, error) {
	var (
		fm  postFrontMatter
		err error
	)
	steps := []func() error{
		func() error { fm.Published, err = f.boolean("published", false); return err },
		func() error { fm.Title, err = f.str("title"); return err },
		func() error { fm.Description, err = f.str("description"); return err },
		func() error { fm.Excerpt, err = f.str("excerpt"); return err },
		func() error { fm.Date, err = f.date("date"); return err },
		func() error { fm.Updated, err = f.date("updated"); return err },
		func() error { fm.Author, err = f.str("author"); return err },
		func() error { fm.ReadTime, err = f.str("readTime"); return err },
		func() error { fm.Category, err = f.str("category"); return err },
		func() error { fm.Image, err = f.str("image"); return err },
		func() error { fm.ImageAlt, err = f.str("imageAlt"); return err },
		func() error { fm.Tags, err = f.strings("tags"); return err },
		func() error { fm.Featured, err = f.boolean("featured", false); return err },
		func() error { fm.Draft, err = f.boolean("draft", false); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fm, err
		}
	}
	if fm.Author == "" {
		fm.Author = DefaultAuthor
	}
	if err := fm.Validate(); err != nil {
		return fm, fromOzzo(f.file, err)
	}
	return fm, nil
}

type projectFrontMatter struct {
	Published   bool   `json:"published"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	URL         string `json:"url"`
	Repository  string `json:"repository"`
}

func (fm *projectFrontMatter) Validate() error {
	return validation.ValidateStruct(fm,
		validation.Field(&fm.Title, validation.Required),
		validation.Field(&fm.Description, validation.Required),
		validation.Field(&fm.Date, validation.Required, isoDate),
		validation.Field(&fm.URL, is.URL),
		validation.Field(&fm.Repository, validation.Match(repositoryPattern).Error("must be an owner/repo identifier")),
	)
}

func decodeProject(f fields) (projectFrontMatter, error) {
	var (
		fm  projectFrontMatter
		err error
	)
	steps := []func() error{
		func() error { fm.Published, err = f.boolean("published", false); return err },
		func() error { fm.Title, err = f.str("title"); return err },
		func() error { fm.Description, err = f.str("description"); return err },
		func() error { fm.Date, err = f.date("date"); return err },
		func() error { fm.URL, err = f.str("url"); return err },
		func() error { fm.Repository, err = f.str("repository"); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fm, err
		}
	}
	if err := fm.Validate(); err != nil {
		return fm, fromOzzo(f.file, err)
	}
	return fm, nil
}
